package worker

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPayloadRefs_ExtractsIdentifiers(t *testing.T) {
	refs := payloadRefs(json.RawMessage(`{"transaction_id":"abc-123","note":"x","attempt":2}`))
	assert.Equal(t, map[string]string{"transaction_id": "abc-123"}, refs)
}

func TestPayloadRefs_NoIdentifiers(t *testing.T) {
	assert.Nil(t, payloadRefs(json.RawMessage(`{"products":[{"name":"Brake Pad Set"}]}`)))
	assert.Nil(t, payloadRefs(json.RawMessage(`{broken`)))
}
