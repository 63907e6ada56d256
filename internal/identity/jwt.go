package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"github.com/sachin-raj-m/food-pass/internal/domain"
)

type Claims struct {
	Role string `json:"role"`
	jwt.StandardClaims
}

// JWTProvider validates HMAC-signed bearer tokens minted by the identity
// platform. The subject claim carries the actor ID, the role claim the
// staff role.
type JWTProvider struct {
	secret []byte
}

func NewJWTProvider(secret string) *JWTProvider {
	return &JWTProvider{secret: []byte(secret)}
}

func (p *JWTProvider) Resolve(ctx context.Context, credential string) (domain.Actor, error) {
	const op = "identity.JWTProvider.Resolve"

	if credential == "" {
		return domain.Actor{Role: domain.RoleNone}, fmt.Errorf("%s:%w", op, ErrNoIdentity)
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(credential, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil || !token.Valid {
		return domain.Actor{Role: domain.RoleNone}, fmt.Errorf("%s:%w", op, ErrInvalidIdentity)
	}

	actorID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return domain.Actor{Role: domain.RoleNone}, fmt.Errorf("%s:%w", op, ErrInvalidIdentity)
	}

	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return domain.Actor{Role: domain.RoleNone}, fmt.Errorf("%s:%w", op, ErrInvalidIdentity)
	}

	return domain.Actor{ID: actorID, Role: role}, nil
}

// IssueToken signs a token for an actor. The service itself only ever
// validates tokens; this is for provisioning and tests.
func (p *JWTProvider) IssueToken(actor domain.Actor, ttl time.Duration) (string, error) {
	const op = "identity.JWTProvider.IssueToken"

	now := time.Now()
	claims := Claims{
		Role: string(actor.Role),
		StandardClaims: jwt.StandardClaims{
			Subject:   actor.ID.String(),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("%s:%w", op, err)
	}

	return signed, nil
}
