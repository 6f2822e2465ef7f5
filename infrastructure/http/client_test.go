package http_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	infrahttp "github.com/jonesrussell/north-cloud/link-review/infrastructure/http"
)

func TestNewClient(t *testing.T) {
	assert.Equal(t, infrahttp.DefaultTimeout, infrahttp.NewClient(0).Timeout)
	assert.Equal(t, 3*time.Second, infrahttp.NewClient(3*time.Second).Timeout)

	tr := infrahttp.NewTransport()
	assert.Equal(t, infrahttp.DefaultMaxIdleConnsPerHost, tr.MaxIdleConnsPerHost)
	assert.NotNil(t, tr.Proxy)
}
