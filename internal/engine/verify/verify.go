// Package verify implements the proof-verifier registry: a
// concurrency-safe map from proof type name to the function that checks a
// document payload against that proof's invariant. A Registry is not
// shared process-wide: engine.Open creates a separate one for each
// Database.
package verify

import (
	"encoding/json"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/hyperpolymath/lithoglyph/internal/engine/errs"
	"github.com/hyperpolymath/lithoglyph/pkg/log"
	"github.com/hyperpolymath/lithoglyph/pkg/metrics"
)

// VerifyFunc checks payload against a named proof type and returns nil if
// it holds.
type VerifyFunc func(payload []byte) error

type entry struct {
	fn   VerifyFunc
	desc string
}

// Registry holds a set of proof verifiers.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds or replaces the verifier for proofType.
func (r *Registry) Register(proofType, description string, fn VerifyFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[proofType] = entry{fn: fn, desc: description}
}

// Unregister removes the verifier for proofType. Unregistering a name that
// is not currently registered — including a second Unregister of the same
// name — reports ErrNotFound.
func (r *Registry) Unregister(proofType string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[proofType]; !ok {
		return fmt.Errorf("unregister %q: %w", proofType, errs.ErrNotFound)
	}
	delete(r.entries, proofType)
	return nil
}

// Names returns the registered proof type names, in no particular order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.entries))
	for name := range r.entries {
		out = append(out, name)
	}
	return out
}

// Describe returns the human-readable description registered for
// proofType, or the empty string if it is not registered.
func (r *Registry) Describe(proofType string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[proofType].desc
}

// Verify runs the verifier registered for proofType against payload. An
// unregistered proof type is reported as ErrNotFound.
func (r *Registry) Verify(proofType string, payload []byte) error {
	r.mu.RLock()
	e, ok := r.entries[proofType]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("verify %q: %w", proofType, errs.ErrNotFound)
	}

	err := e.fn(payload)
	result := "ok"
	if err != nil {
		result = "failed"
	}
	metrics.ProofVerifyTotal.WithLabelValues(proofType, result).Inc()
	log.WithComponent("verify").Debug().Str("proof_type", proofType).Err(err).Msg("verify")
	return err
}

// InitBuiltins registers the verifiers the engine ships with: fd-holds
// (payload must be non-empty, syntactically valid), normalization
// (payload must be a canonical, whitespace-free JSON encoding), and
// denormalization (the inverse: payload must be a human-formatted,
// indented JSON encoding).
func InitBuiltins(r *Registry) {
	r.Register("fd-holds", "payload is non-empty and valid UTF-8", verifyFDHolds)
	r.Register("normalization", "payload is compact, canonical JSON with no insignificant whitespace", verifyNormalization)
	r.Register("denormalization", "payload is indented, human-formatted JSON", verifyDenormalization)
}

func verifyFDHolds(payload []byte) error {
	if len(payload) == 0 {
		return fmt.Errorf("fd-holds: empty payload: %w", errs.ErrInvalidArgument)
	}
	if !utf8.Valid(payload) {
		return fmt.Errorf("fd-holds: payload is not valid UTF-8: %w", errs.ErrInvalidArgument)
	}
	return nil
}

func verifyNormalization(payload []byte) error {
	var v interface{}
	if err := json.Unmarshal(payload, &v); err != nil {
		return fmt.Errorf("normalization: not valid JSON: %w", errs.ErrInvalidArgument)
	}
	canonical, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("normalization: %w", errs.ErrInternal)
	}
	if string(canonical) != string(payload) {
		return fmt.Errorf("normalization: payload is not canonical JSON: %w", errs.ErrInvalidArgument)
	}
	return nil
}

func verifyDenormalization(payload []byte) error {
	var v interface{}
	if err := json.Unmarshal(payload, &v); err != nil {
		return fmt.Errorf("denormalization: not valid JSON: %w", errs.ErrInvalidArgument)
	}
	indented, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("denormalization: %w", errs.ErrInternal)
	}
	if string(indented) != string(payload) {
		return fmt.Errorf("denormalization: payload is not indented JSON: %w", errs.ErrInvalidArgument)
	}
	return nil
}
