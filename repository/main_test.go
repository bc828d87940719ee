package repository

import (
	"os"
	"secure-banking-api/logger"
	"testing"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}
