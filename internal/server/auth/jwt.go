package auth

import (
	"time"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims extends the registered claim set with the user's email, which lets
// externally issued tokens be resolved to a local identity.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// GenerateToken produces a signed HS256 token with subject = userID, the
// email claim, an issued-at timestamp and expiry = issued-at + ttl.
func GenerateToken(userID, email string, secretKey []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: email,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// VerifyToken reports whether tokenString is well-formed, correctly signed
// and not expired. It never returns an error: verification failure is the
// expected outcome for forged or expired tokens on the unauthenticated hot
// path, and the function is safe to call on attacker-controlled input.
func VerifyToken(tokenString string, secretKey []byte) bool {
	_, err := parseToken(tokenString, secretKey)
	return err == nil
}

// DecodeToken extracts the claims from tokenString. It is only meaningful
// for tokens that VerifyToken accepts; invalid tokens yield ErrInvalidToken.
func DecodeToken(tokenString string, secretKey []byte) (*Claims, error) {
	return parseToken(tokenString, secretKey)
}

func parseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
