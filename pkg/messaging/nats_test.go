package messaging

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPublisherSubject(t *testing.T) {
	p := &Publisher{prefix: "edubatch"}
	require.Equal(t, "edubatch.registration.completed", p.Subject("registration.completed"))

	bare := &Publisher{}
	require.Equal(t, "payment.orphaned", bare.Subject("payment.orphaned"))
}

func TestPublisherCloseNil(t *testing.T) {
	var p *Publisher
	require.NoError(t, p.Close())
	require.NoError(t, (&Publisher{}).Close())
}
