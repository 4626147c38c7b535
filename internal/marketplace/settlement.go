package marketplace

import (
	"github.com/shopspring/decimal"

	"github.com/nullityv3/home-hero-sub002/internal/domain"
)

// DefaultFeeRate is the platform's share of a job when nothing is configured.
var DefaultFeeRate = decimal.RequireFromString("0.10")

// Settlement is what a completed job is worth and what the platform keeps.
type Settlement struct {
	Amount      decimal.Decimal
	PlatformFee decimal.Decimal
}

// SettlementPolicy prices a completed job.
type SettlementPolicy interface {
	Settle(r *domain.ServiceRequest) Settlement
}

// MidpointPolicy prices a job at the middle of the requester's budget range.
// Amount and fee are rounded to cents.
type MidpointPolicy struct {
	FeeRate decimal.Decimal
}

func (p MidpointPolicy) Settle(r *domain.ServiceRequest) Settlement {
	amount := r.Budget.Midpoint().Round(2)
	return Settlement{
		Amount:      amount,
		PlatformFee: amount.Mul(p.FeeRate).Round(2),
	}
}

// FixedPolicy prices every job at Amount. Handy for agreed-price flows and tests.
type FixedPolicy struct {
	Amount  decimal.Decimal
	FeeRate decimal.Decimal
}

func (p FixedPolicy) Settle(*domain.ServiceRequest) Settlement {
	return Settlement{Amount: p.Amount, PlatformFee: p.Amount.Mul(p.FeeRate).Round(2)}
}

func jobSettlement(r *domain.ServiceRequest, s Settlement) domain.JobSettlement {
	method := r.PaymentMethod
	if method == "" {
		method = domain.PaymentInApp
	}
	return domain.JobSettlement{
		RequestID:     r.ID,
		HeroID:        *r.AssignedHeroID,
		PaymentMethod: method,
		Amount:        s.Amount,
		PlatformFee:   s.PlatformFee,
	}
}
