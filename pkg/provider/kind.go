package provider

import (
	"fmt"
	"sort"
)

const (
	KindUnknown Kind = 0
	KindGcm     Kind = 1
	KindFcm     Kind = 2
)

type Kind int

var _KindNames = map[Kind]string{
	KindUnknown: "unknown",
	KindGcm:     "google", // native client: https://firebase.google.com/docs/cloud-messaging/http-server-ref
	KindFcm:     "fcm",    // github.com/edganiukov/fcm client, same legacy API
}

func KindStringKeys() []string {
	retval := make([]string, 0, len(_KindNames))
	for _, name := range _KindNames {
		retval = append(retval, name)
	}
	sort.Strings(retval)

	return retval
}

func KindByString(src string) Kind {
	for kind, name := range _KindNames {
		if name == src {
			return kind
		}
	}

	return KindUnknown
}

func (k Kind) String() string {
	val, ok := _KindNames[k]
	if !ok {
		return fmt.Sprintf("invalid provider kind: %d", k)
	}

	return val
}
