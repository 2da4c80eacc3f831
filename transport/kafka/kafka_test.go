package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitSrvLookupError(t *testing.T) {
	d := &KafkaDriver{
		kafkaSrv:     "flowtally-kafka.invalid",
		kafkaVersion: "2.8.0",
	}

	err := d.Init()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service discovery")
}

func TestInitBadVersion(t *testing.T) {
	d := &KafkaDriver{
		kafkaVersion: "not-a-version",
	}

	err := d.Init()
	assert.Error(t, err)
}
