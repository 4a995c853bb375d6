package main

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"moneytransfer/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const sessionTTL = 24 * time.Hour

// RegisterUser creates a user with the "user" role and seeds their default
// statuses so the bulk-mark shortcuts work immediately.
func RegisterUser(username, password, email string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("username required")
	}
	if len(password) < 6 { // basic password policy
		return fmt.Errorf("password too short (min 6)")
	}
	// pre-check existing (optimistic)
	var existing models.User
	if err := db.Where("username = ?", username).First(&existing).Error; err == nil {
		return fmt.Errorf("user already exists")
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	// ensure role exists (idempotent)
	var role models.Role
	if err := db.Where("name = ?", "user").First(&role).Error; err != nil {
		role = models.Role{Name: "user", Description: "regular user"}
		if err2 := db.Where("name = ?", role.Name).FirstOrCreate(&role).Error; err2 != nil {
			return fmt.Errorf("failed to ensure user role: %v", err2)
		}
	}
	rid := role.ID
	user := models.User{Username: username, Email: strings.TrimSpace(email), HashedPassword: hashedPassword, RoleID: &rid}
	if err := db.Create(&user).Error; err != nil {
		if isUniqueConstraintError(err) { // race after the initial check
			return fmt.Errorf("user already exists")
		}
		return err
	}
	seedDefaultStatuses(user.ID)
	return nil
}

func Authenticate(username, password string) (models.User, error) {
	username = strings.TrimSpace(username)
	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		return models.User{}, fmt.Errorf("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword(user.HashedPassword, []byte(password)); err != nil {
		return models.User{}, fmt.Errorf("invalid credentials")
	}
	return user, nil
}

// issueSession stores a revocable session row and returns a signed JWT carrying
// the session id. The token goes into an HttpOnly cookie; only its hash is kept
// server-side.
func issueSession(user models.User) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	sid := hex.EncodeToString(b)
	h := sha256.Sum256([]byte(sid))
	sess := models.Session{UserID: user.ID, TokenHash: hex.EncodeToString(h[:]), ExpiresAt: time.Now().Add(sessionTTL)}
	if err := db.Create(&sess).Error; err != nil {
		return "", err
	}
	roleName := ""
	if user.RoleID != nil {
		var r models.Role
		if err := db.First(&r, *user.RoleID).Error; err == nil {
			roleName = r.Name
		}
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": user.Username,
		"role":     roleName,
		"sid":      sid,
		"exp":      sess.ExpiresAt.Unix(),
	})
	return token.SignedString(jwtSecret)
}

// resolveSession parses a session token and returns the user it belongs to,
// rejecting revoked or expired sessions.
func resolveSession(tokenString string) (models.User, string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrInvalidKeyType
		}
		return jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return models.User{}, "", fmt.Errorf("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.User{}, "", fmt.Errorf("invalid claims")
	}
	sid, _ := claims["sid"].(string)
	role, _ := claims["role"].(string)
	sess, err := findSessionBySID(sid)
	if err != nil || sess.Revoked || time.Now().After(sess.ExpiresAt) {
		return models.User{}, "", fmt.Errorf("session expired or revoked")
	}
	var user models.User
	if err := db.First(&user, sess.UserID).Error; err != nil {
		return models.User{}, "", fmt.Errorf("user not found")
	}
	return user, role, nil
}

// revokeSession marks the session behind the token as revoked. Used on logout;
// a bad token is a no-op.
func revokeSession(tokenString string) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return
	}
	sid, _ := claims["sid"].(string)
	if sess, err := findSessionBySID(sid); err == nil {
		db.Model(&models.Session{}).Where("id = ?", sess.ID).Update("revoked", true)
	}
}

func findSessionBySID(sid string) (*models.Session, error) {
	if sid == "" {
		return nil, fmt.Errorf("missing session id")
	}
	h := sha256.Sum256([]byte(sid))
	var sess models.Session
	if err := db.Where("token_hash = ?", hex.EncodeToString(h[:])).First(&sess).Error; err != nil {
		return nil, err
	}
	return &sess, nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") ||
		strings.Contains(s, "UNIQUE constraint") || strings.Contains(s, "already exists")
}
