package coordinator

import (
	"github.com/scroll-tech/proving-sdk/pkg/types"
)

// ErrorCode is the coordinator envelope's numeric result code. Any nonzero
// value other than ErrCodeJWTTokenExpired is a plain envelope error; the
// expiry code triggers a forced re-login and a single retry.
type ErrorCode int

const (
	ErrCodeSuccess         ErrorCode = 0
	ErrCodeJWTTokenExpired ErrorCode = 4001
)

// Envelope is the response shape shared by every coordinator endpoint.
type Envelope[T any] struct {
	ErrCode ErrorCode `json:"errcode"`
	ErrMsg  string    `json:"errmsg"`
	Data    *T        `json:"data,omitempty"`
}

// ChallengeResponseData carries the short-lived login nonce.
type ChallengeResponseData struct {
	Time  string `json:"time"`
	Token string `json:"token"`
}

// CoordinatorProverType is the coordinator's bucket for what kinds of work a
// prover accepts, folded down from the richer ProofType/CircuitType pair per
// the coordinator-prover-type mapping. It is the wire type serialized inside
// LoginMessage.ProverTypes, distinct from types.ProofType.
type CoordinatorProverType uint8

const (
	CoordinatorProverUndefined CoordinatorProverType = 0
	CoordinatorProverChunk     CoordinatorProverType = 1
	CoordinatorProverBatch     CoordinatorProverType = 2
	CoordinatorProverOpenVM    CoordinatorProverType = 3
)

// proverTypesFor folds circuit family and supported proof types into the
// coordinator's prover-type buckets, so the coordinator can route only tasks
// this prover can serve.
func proverTypesFor(circuit types.CircuitType, supported []types.ProofType) []CoordinatorProverType {
	if circuit == types.CircuitTypeOpenVM {
		return []CoordinatorProverType{CoordinatorProverOpenVM}
	}

	var hasBatch, hasChunk bool
	for _, pt := range supported {
		switch pt {
		case types.ProofTypeBatch, types.ProofTypeBundle:
			hasBatch = true
		case types.ProofTypeChunk:
			hasChunk = true
		}
	}

	var out []CoordinatorProverType
	if hasChunk {
		out = append(out, CoordinatorProverChunk)
	}
	if hasBatch {
		out = append(out, CoordinatorProverBatch)
	}
	return out
}

// LoginMessage is RLP-encoded and signed to authenticate a worker's login.
type LoginMessage struct {
	Challenge          string
	ProverVersion      string
	ProverName         string
	ProverProviderType types.ProverProviderType
	ProverTypes        []CoordinatorProverType
	Vks                []string
}

// loginMessageRLP mirrors LoginMessage field-for-field except ProverTypes,
// which is converted to a raw byte string before encoding: a Go/Rust
// []uint8 slice RLP-encodes as a byte string, not a list, and the
// coordinator's decoder expects exactly that shape.
type loginMessageRLP struct {
	Challenge          string
	ProverVersion      string
	ProverName         string
	ProverProviderType uint8
	ProverTypes        []byte
	Vks                []string
}

func (m LoginMessage) toRLP() loginMessageRLP {
	proverTypes := make([]byte, len(m.ProverTypes))
	for i, pt := range m.ProverTypes {
		proverTypes[i] = uint8(pt)
	}
	return loginMessageRLP{
		Challenge:          m.Challenge,
		ProverVersion:      m.ProverVersion,
		ProverName:         m.ProverName,
		ProverProviderType: uint8(m.ProverProviderType),
		ProverTypes:        proverTypes,
		Vks:                m.Vks,
	}
}

// LoginRequest is the signed login POST body.
type LoginRequest struct {
	Message   LoginMessage `json:"message"`
	PublicKey string       `json:"public_key"`
	Signature string       `json:"signature"`
}

// LoginResponseData carries the session bearer token.
type LoginResponseData struct {
	Time  string `json:"time"`
	Token string `json:"token"`
}

// GetTaskRequest asks for one task among the given types, optionally bounded
// by the prover's current L2 height.
type GetTaskRequest struct {
	TaskTypes    []types.ProofType `json:"task_types"`
	ProverHeight *uint64           `json:"prover_height,omitempty"`
}

// GetTaskResponseData is a coordinator task in its wire form; it decodes
// directly into types.CoordinatorTask.
type GetTaskResponseData = types.CoordinatorTask

// SubmitProofRequest reports the outcome of a single coordinator task.
type SubmitProofRequest struct {
	UUID        string                  `json:"uuid"`
	TaskID      string                  `json:"task_id"`
	TaskType    types.ProofType         `json:"task_type"`
	Status      types.ProofStatus       `json:"status"`
	Proof       string                  `json:"proof"`
	FailureType *types.ProofFailureType `json:"failure_type,omitempty"`
	FailureMsg  *string                 `json:"failure_msg,omitempty"`
}

// SubmitProofResponseData carries no fields; the envelope's errcode is the
// whole of the result.
type SubmitProofResponseData struct{}
