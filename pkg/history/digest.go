package history

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/dd0wney/pipeswarm/pkg/simulation"
)

// Digest hashes the canonical JSON encoding of records, one line per record.
// Two runs with identical turn histories have identical digests; the run id
// is not part of the records and does not affect it.
func Digest(records []simulation.TurnRecord) (string, error) {
	h := sha256.New()
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return "", err
		}
		h.Write(data)
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
