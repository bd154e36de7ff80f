package server_test

import (
	"testing"

	"site-janitor/core/server"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     server.Config
		wantErr bool
	}{
		{"Valid", server.Config{JWTSecret: "s", AdminRole: "ADMIN"}, false},
		{"MissingSecret", server.Config{AdminRole: "ADMIN"}, true},
		{"MissingRole", server.Config{JWTSecret: "s"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_BodyLimit(t *testing.T) {
	assert.Equal(t, 4*1024*1024, server.Config{}.BodyLimit())
	assert.Equal(t, 10*1024*1024, server.Config{BodyLimitMB: 10}.BodyLimit())
}
