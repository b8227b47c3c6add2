package market

import (
	"encoding/json"
	"fmt"
)

// Phase is the conversation step a user is in. Each variant carries only the
// fields collected so far or the entity under review.
type Phase interface {
	Name() string
	isPhase()
}

type (
	SellerPhone struct{}

	SellerEmail struct {
		Phone string `json:"phone"`
	}

	SellerName struct {
		Phone string `json:"phone"`
		Email string `json:"email"`
	}

	LotDescription struct{}

	LotPrice struct {
		Description string `json:"description"`
	}

	LotPhoto struct {
		Description string `json:"description"`
		Price       string `json:"price"`
	}

	// SellerReview is an admin deciding on the application of ApplicantID.
	SellerReview struct {
		ApplicantID    int64 `json:"applicant_id"`
		AwaitingReason bool  `json:"awaiting_reason"`
	}

	// LotReview is an admin deciding on LotID.
	LotReview struct {
		LotID          int64 `json:"lot_id"`
		AwaitingReason bool  `json:"awaiting_reason"`
	}
)

const (
	phaseSellerPhone    = "seller_phone"
	phaseSellerEmail    = "seller_email"
	phaseSellerName     = "seller_name"
	phaseLotDescription = "lot_description"
	phaseLotPrice       = "lot_price"
	phaseLotPhoto       = "lot_photo"
	phaseSellerReview   = "seller_review"
	phaseLotReview      = "lot_review"

	phaseIdle = "idle"
)

func (SellerPhone) Name() string    { return phaseSellerPhone }
func (SellerEmail) Name() string    { return phaseSellerEmail }
func (SellerName) Name() string     { return phaseSellerName }
func (LotDescription) Name() string { return phaseLotDescription }
func (LotPrice) Name() string       { return phaseLotPrice }
func (LotPhoto) Name() string       { return phaseLotPhoto }
func (SellerReview) Name() string   { return phaseSellerReview }
func (LotReview) Name() string      { return phaseLotReview }

func (SellerPhone) isPhase()    {}
func (SellerEmail) isPhase()    {}
func (SellerName) isPhase()     {}
func (LotDescription) isPhase() {}
func (LotPrice) isPhase()       {}
func (LotPhoto) isPhase()       {}
func (SellerReview) isPhase()   {}
func (LotReview) isPhase()      {}

// phaseLabel names p for logs and metrics, distinguishing the reason sub-step.
func phaseLabel(p Phase) string {
	switch v := p.(type) {
	case nil:
		return phaseIdle
	case SellerReview:
		if v.AwaitingReason {
			return phaseSellerReview + "_reason"
		}
	case LotReview:
		if v.AwaitingReason {
			return phaseLotReview + "_reason"
		}
	}
	return p.Name()
}

type phaseEnvelope struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data,omitempty"`
}

// PhaseCodec encodes phases as {"kind":..., "data":...} for the Redis state backend.
type PhaseCodec struct{}

// Marshal encodes p with its kind tag.
func (PhaseCodec) Marshal(p Phase) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("market: encode nil phase")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("market: encode %s: %w", p.Name(), err)
	}
	return json.Marshal(phaseEnvelope{Kind: p.Name(), Data: data})
}

// Unmarshal decodes a tagged phase.
func (PhaseCodec) Unmarshal(raw []byte) (Phase, error) {
	var env phaseEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("market: decode phase: %w", err)
	}
	switch env.Kind {
	case phaseSellerPhone:
		return decodePhase[SellerPhone](env)
	case phaseSellerEmail:
		return decodePhase[SellerEmail](env)
	case phaseSellerName:
		return decodePhase[SellerName](env)
	case phaseLotDescription:
		return decodePhase[LotDescription](env)
	case phaseLotPrice:
		return decodePhase[LotPrice](env)
	case phaseLotPhoto:
		return decodePhase[LotPhoto](env)
	case phaseSellerReview:
		return decodePhase[SellerReview](env)
	case phaseLotReview:
		return decodePhase[LotReview](env)
	default:
		return nil, fmt.Errorf("market: unknown phase %q", env.Kind)
	}
}

func decodePhase[P Phase](env phaseEnvelope) (Phase, error) {
	var p P
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("market: decode %s: %w", env.Kind, err)
		}
	}
	return p, nil
}
