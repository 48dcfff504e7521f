package worker

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"github.com/pkg/errors"
)

// TokenHash hides a device token in logs.
func TokenHash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8])
}

// ReadKeyFile reads a server key stored in a file, surrounding
// whitespace removed.
func ReadKeyFile(path string) (string, error) {

	data, err := readFile(path, _MaxKeyFileSize)
	if err != nil {
		return "", errors.Wrap(err, "read key file")
	}

	return string(bytes.TrimSpace(data)), nil
}

const _MaxKeyFileSize = 4096

func readFile(path string, maxSize int64) ([]byte, error) {

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	} else if size > maxSize {
		return nil, errors.Errorf("invalid file size: %d", size)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	buf := bytes.NewBuffer(make([]byte, 0, size))
	if _, err := io.Copy(buf, f); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
