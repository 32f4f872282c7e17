package domain

import (
	"context"
	"errors"
	"math"
	"time"
)

var (
	ErrInsufficientBalance = errors.New("insufficient_balance")
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrOfferNotFound       = errors.New("offer_not_found")
	ErrInvalidIssue        = errors.New("invalid_issue")
)

type EntryDirection string

const (
	DirectionEarn  EntryDirection = "EARN"
	DirectionSpend EntryDirection = "SPEND"
)

// JournalSize caps the number of journal entries kept.
const JournalSize = 50

// Entry records one balance movement and the balance after it.
type Entry struct {
	ID        string         `json:"id"`
	Direction EntryDirection `json:"direction"`
	Amount    int64          `json:"amount"`
	Balance   int64          `json:"balance"`
	Reason    string         `json:"reason"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Ledger is a non-negative point balance.
type Ledger struct {
	balance int64
}

// NewLedger opens a ledger at balance. Negative balances open at zero.
func NewLedger(balance int64) *Ledger {
	if balance < 0 {
		balance = 0
	}
	return &Ledger{balance: balance}
}

func (l *Ledger) Balance() int64 { return l.balance }

// Earn credits amount. Amounts that would overflow the balance are rejected.
func (l *Ledger) Earn(amount int64) error {
	if amount <= 0 || amount > math.MaxInt64-l.balance {
		return ErrInvalidAmount
	}
	l.balance += amount
	return nil
}

// Spend debits cost. The balance is left untouched when it cannot cover cost.
func (l *Ledger) Spend(cost int64) error {
	if cost <= 0 {
		return ErrInvalidAmount
	}
	if l.balance < cost {
		return ErrInsufficientBalance
	}
	l.balance -= cost
	return nil
}

type Offer struct {
	ID          string `json:"id"`
	Partner     string `json:"partner"`
	Title       string `json:"title"`
	Cost        int64  `json:"cost"`
	Description string `json:"description"`
}

var offers = []Offer{
	{ID: "1", Partner: "Decathlon", Title: "-20% Rayon Basket", Cost: 200, Description: "Valable sur la marque Tarmak."},
	{ID: "2", Partner: "Nike Store", Title: "15€ offerts", Cost: 500, Description: "Dès 80€ d'achat au magasin Atlantis."},
	{ID: "3", Partner: "Ville de Nantes", Title: "Place match Hermine", Cost: 800, Description: "1 place pour le prochain match pro."},
}

// Offers returns the partner offer catalog, cheapest first.
func Offers() []Offer {
	out := make([]Offer, len(offers))
	copy(out, offers)
	return out
}

func FindOffer(id string) (Offer, error) {
	for _, o := range offers {
		if o.ID == id {
			return o, nil
		}
	}
	return Offer{}, ErrOfferNotFound
}

// Report acknowledges a venue issue report.
type Report struct {
	Ticket  int    `json:"ticket"`
	VenueID string `json:"venueId"`
	Issue   string `json:"issue"`
	Reward  int64  `json:"reward"`
	Balance int64  `json:"balance"`
}

// Redemption is a spent offer with its scannable code.
type Redemption struct {
	Offer   Offer  `json:"offer"`
	Code    string `json:"code"`
	QRCode  []byte `json:"qrCode"`
	Balance int64  `json:"balance"`
}

type Summary struct {
	Balance int64   `json:"balance"`
	Journal []Entry `json:"journal"`
}

type Service interface {
	Balance(ctx context.Context) int64
	Summary(ctx context.Context) Summary
	Earn(ctx context.Context, amount int64, reason string) (Entry, error)
	Spend(ctx context.Context, cost int64, reason string) (Entry, error)
	ReportIssue(ctx context.Context, venueID, issue string) (Report, error)
	Redeem(ctx context.Context, offerID string) (Redemption, error)
	Reset(ctx context.Context) error
}
