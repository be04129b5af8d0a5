package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims claims estándar más la identidad del responsable.
// El token lo emite el servicio de autenticación de la consola; aquí solo se valida y se lee.
type Claims struct {
	jwt.RegisteredClaims
	PartyID string `json:"party_id"` // DNI del responsable
	Name    string `json:"name"`
	Role    string `json:"role"`
}

// Identity responsable autenticado.
type Identity struct {
	PartyID string
	Name    string
	Role    string
}

// Generate genera un token firmado (HS256). Lo usan los tests y las herramientas de desarrollo.
func Generate(secret string, id Identity, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   id.PartyID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		PartyID: id.PartyID,
		Name:    id.Name,
		Role:    id.Role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse valida el token y devuelve la identidad del responsable.
// Si issuer no está vacío, el claim iss debe coincidir.
func Parse(secret, issuer, tokenString string) (Identity, error) {
	if secret == "" {
		return Identity{}, fmt.Errorf("jwt: secret vacío")
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return Identity{}, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Identity{}, fmt.Errorf("claims inválidos")
	}
	partyID := claims.PartyID
	if partyID == "" {
		partyID = claims.Subject
	}
	if partyID == "" {
		return Identity{}, fmt.Errorf("jwt: el token no identifica al responsable")
	}
	return Identity{PartyID: partyID, Name: claims.Name, Role: claims.Role}, nil
}
