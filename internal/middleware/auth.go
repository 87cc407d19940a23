package middleware

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// tokenTTL is how long an issued editor token stays valid.
const tokenTTL = 24 * time.Hour

// TokenHandler exchanges the configured access key for a signed bearer
// token. It expects a JSON payload with an "accessKey" field; the key is
// compared against the bcrypt hash from the environment.
func TokenHandler(accessKeyHash, jwtSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			AccessKey string `json:"accessKey"`
		}

		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			log.Printf("Error decoding request body for TokenHandler: %v", err)
			return
		}

		if req.AccessKey == "" {
			http.Error(w, "Access key cannot be empty", http.StatusBadRequest)
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(accessKeyHash), []byte(req.AccessKey)); err != nil {
			http.Error(w, "Invalid access key", http.StatusUnauthorized)
			log.Printf("[Auth] Rejected token request: %v", err)
			return
		}

		claims := jwt.RegisteredClaims{
			Subject:   "editor",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtSecret))
		if err != nil {
			http.Error(w, "Failed to sign token", http.StatusInternalServerError)
			log.Printf("[Auth] Failed to sign token: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"token": token})
		log.Printf("[Auth] Issued editor token, valid for %s", tokenTTL)
	}
}

// RequireAuth protects the edit routes with the bearer token issued by
// TokenHandler. With no secret configured the check is disabled so local
// development works out of the box.
func RequireAuth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if jwtSecret == "" {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, "Missing bearer token", http.StatusUnauthorized)
				return
			}
			tokenString := strings.TrimPrefix(header, "Bearer ")

			token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				log.Printf("[Auth] Rejected request to %s: %v", r.URL.Path, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
