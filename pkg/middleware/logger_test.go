package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSkipRequestLog(t *testing.T) {
	tests := []struct {
		path string
		skip bool
	}{
		{"/metrics", true},
		{"/api/v1/health", true},
		{"/api/v1/health/live", true},
		{"/api/v1/health/ready", true},
		{"/api/v1/customers", false},
		{"/api/v1/resolution/resync", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.skip, skipRequestLog(tt.path), tt.path)
	}
}
