package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/susp3kt93/myfleet-sub000/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const issuer = "myfleet"

type JWTUtil struct {
	secretKey []byte
	expiry    time.Duration
}

// Claims identify the acting user, their company and role.
type Claims struct {
	UserID    string `json:"user_id"`
	CompanyID string `json:"company_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

func NewJWTUtil(secret string, expiry time.Duration) *JWTUtil {
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &JWTUtil{secretKey: []byte(secret), expiry: expiry}
}

func (j *JWTUtil) GenerateToken(actor models.Actor) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:    actor.UserID.Hex(),
		CompanyID: actor.CompanyID.Hex(),
		Role:      string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(j.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   actor.UserID.Hex(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secretKey)
}

func (j *JWTUtil) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return j.secretKey, nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// Actor converts validated claims into the identity services act on.
func (c *Claims) Actor() (models.Actor, error) {
	userID, err := primitive.ObjectIDFromHex(c.UserID)
	if err != nil {
		return models.Actor{}, fmt.Errorf("invalid user_id claim: %w", err)
	}
	companyID, err := primitive.ObjectIDFromHex(c.CompanyID)
	if err != nil {
		return models.Actor{}, fmt.Errorf("invalid company_id claim: %w", err)
	}
	role := models.Role(c.Role)
	if role != models.RoleAdmin && role != models.RoleDriver {
		return models.Actor{}, fmt.Errorf("invalid role claim %q", c.Role)
	}
	return models.Actor{UserID: userID, CompanyID: companyID, Role: role}, nil
}
