package worker

import (
	"context"
	"encoding/json"
	"fmt"
)

// StubExtractor stands in for the real extraction collaborator during local
// development. It records what it saw and nothing else.
type StubExtractor struct{}

func (StubExtractor) Extract(_ context.Context, documentProfileID, mimeType string, data []byte) (json.RawMessage, error) {
	out := fmt.Sprintf(`{"document_profile_id":%q,"mime_type":%q,"bytes_seen":%d,"items":[]}`,
		documentProfileID, mimeType, len(data))
	return json.RawMessage(out), nil
}
