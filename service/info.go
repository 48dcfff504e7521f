package service

import (
	svcinfo "github.com/dialogs/dialog-gcm-queue/pkg/info"
)

// Info of the service
func Info() *svcinfo.Info {
	return svcinfo.New("gcm-queue")
}
