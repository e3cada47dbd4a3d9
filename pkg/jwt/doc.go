// Package jwt provides JSON Web Token utilities for the Arena API.
//
// The jwt package handles RS256 token signing, validation, and claims
// extraction for authentication.
//
// # Token Signing
//
// Sign tokens for authenticated users:
//
//	service, err := jwt.NewService(jwt.Config{
//	    PrivateKeyPath: "./keys/private.pem",
//	    PublicKeyPath:  "./keys/public.pem",
//	    Issuer:         "arena.guildhall.dev",
//	    ExpirationMins: 30,
//	})
//
//	token, err := service.Sign(jwt.Claims{
//	    Subject:   user.ID,
//	    UserID:    user.ID,
//	    Username:  user.Username,
//	    Role:      string(user.Role),
//	    GuildRank: string(user.GuildRank),
//	})
//
// # Token Validation
//
// Validate and extract claims:
//
//	claims, err := service.Validate(tokenString)
//	if err != nil {
//	    // Invalid or expired token
//	}
//	userID := claims.UserID
//
// # Claims
//
// Standard JWT claims (iss, sub, aud, exp, nbf, iat, jti) are carried
// alongside custom claims identifying the member:
//
//	type Claims struct {
//	    UserID    string // user record ID
//	    Email     string
//	    Username  string
//	    Role      string // member, admin
//	    GuildRank string // Apprentice through Master
//	}
//
// # Key Management
//
// RSA key pairs can be generated with GenerateKeyPair. In tests, use
// NewTestService with an in-memory key instead of files on disk.
package jwt
