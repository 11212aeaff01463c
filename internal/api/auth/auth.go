package auth // import "github.com/shelfdesk/shelfdesk/internal/api/auth"

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/shelfdesk/shelfdesk/internal/model"
	"github.com/shelfdesk/shelfdesk/internal/util"
)

const (
	// Issuer is the issuer of the jwt token.
	Issuer = "shelfdesk"
	// Signing key section. For now, this is only used for signing, not for verifying since we only
	// have 1 version. But it will be used to maintain backward compatibility if we change the signing mechanism.
	KeyID = "v1"
	// AccessTokenAudienceName is the audience name of the access token.
	AccessTokenAudienceName = "user.access-token"
	// AccessTokenCookieName is the cookie name of the access token.
	AccessTokenCookieName = "shelfdesk.access-token"
)

var ErrInvalidToken = errors.New("invalid or expired access token")

type ClaimsMessage struct {
	Name string     `json:"name"`
	Role model.Role `json:"role"`
	jwt.RegisteredClaims
}

// BorrowerSubject is the token subject of a borrower, their bid.
func BorrowerSubject(bid int64) string {
	return strconv.FormatInt(bid, 10)
}

// GenerateAccessToken generates an access token signed with secret.
func GenerateAccessToken(subject, name string, role model.Role, expirationTime time.Time, secret []byte) (string, error) {
	return generateToken(subject, name, role, AccessTokenAudienceName, expirationTime, secret)
}

func generateToken(subject, name string, role model.Role, audience string, expirationTime time.Time, secret []byte) (string, error) {
	registeredClaims := jwt.RegisteredClaims{
		Issuer:   Issuer,
		Audience: jwt.ClaimStrings{audience},
		IssuedAt: jwt.NewNumericDate(time.Now()),
		Subject:  subject,
		ID:       util.GenUUID(),
	}
	if !expirationTime.IsZero() {
		registeredClaims.ExpiresAt = jwt.NewNumericDate(expirationTime)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &ClaimsMessage{
		Name:             name,
		Role:             role,
		RegisteredClaims: registeredClaims,
	})
	token.Header["kid"] = KeyID

	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseAccessToken verifies the signature, issuer, audience and expiry of
// an access token and returns its claims.
func ParseAccessToken(accessToken string, secret []byte) (*ClaimsMessage, error) {
	if accessToken == "" {
		return nil, errors.Wrap(ErrInvalidToken, "no access token provided")
	}
	claims := &ClaimsMessage{}
	_, err := jwt.ParseWithClaims(accessToken, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Name {
			return nil, errors.New("unexpected signing method")
		}
		if kid, ok := t.Header["kid"].(string); !ok || kid != KeyID {
			return nil, errors.New("unexpected key id")
		}
		return secret, nil
	},
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(AccessTokenAudienceName),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidToken, err.Error())
	}
	return claims, nil
}
