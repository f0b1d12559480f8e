package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCredentialsExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.True(t, (&Credentials{}).Expired(now), "missing refresh token")
	assert.True(t, (&Credentials{RefreshToken: "rt", ExpiresAt: &past}).Expired(now))
	assert.False(t, (&Credentials{RefreshToken: "rt", ExpiresAt: &future}).Expired(now))
	assert.False(t, (&Credentials{RefreshToken: "rt"}).Expired(now), "no expiry means usable")
}
