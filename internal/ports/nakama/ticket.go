package nakama

import (
	"errors"
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

// TicketTTL bounds how long a disconnected player may take to come back.
const TicketTTL = 10 * time.Minute

var errTicketSecret = errors.New("ticket secret is not configured")

// TicketClaims let a player reclaim their seat in a running match.
type TicketClaims struct {
	MatchID string `json:"mid"`
	Seat    int    `json:"seat"`
	jwt.StandardClaims
}

// IssueTicket signs a rejoin ticket for userID at seat in matchID.
func IssueTicket(secret []byte, matchID, userID string, seat int, now time.Time) (string, error) {
	if len(secret) == 0 {
		return "", errTicketSecret
	}
	claims := TicketClaims{
		MatchID: matchID,
		Seat:    seat,
		StandardClaims: jwt.StandardClaims{
			Subject:   userID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(TicketTTL).Unix(),
			Issuer:    labelGame,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// VerifyTicket checks the signature and expiry of a rejoin ticket.
func VerifyTicket(secret []byte, ticket string) (*TicketClaims, error) {
	if len(secret) == 0 {
		return nil, errTicketSecret
	}
	claims := &TicketClaims{}
	_, err := jwt.ParseWithClaims(ticket, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid ticket: %w", err)
	}
	return claims, nil
}
