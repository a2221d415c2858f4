package errprocess

import (
	"errors"
	"vendor_chat_portal/pkg/logger"
)

// Set log the message and return it as an error
func Set(errMsg string) error {
	logger.Log.Error(errMsg)
	return errors.New(errMsg)
}
