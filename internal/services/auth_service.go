package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"recipebox/internal/common"
	"recipebox/internal/models"
	"recipebox/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// bcrypt only looks at the first 72 bytes and refuses longer input.
const maxPasswordBytes = 72

// AuthConfig configures token issuance and password hashing.
type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

// TokenClaims is the verified content of an access token.
type TokenClaims struct {
	UserID    uint
	Username  string
	ExpiresAt time.Time
}

// AuthService handles account registration, login and token verification.
type AuthService struct {
	accountRepo repositories.AccountRepository
	jwtSecret   []byte
	tokenTTL    time.Duration
	bcryptCost  int
	dummyHash   []byte
	log         *logrus.Logger
}

// NewAuthService creates a new AuthService. An empty secret is a
// configuration error.
func NewAuthService(accountRepo repositories.AccountRepository, cfg AuthConfig, log *logrus.Logger) (*AuthService, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("%w: JWT signing secret is empty", common.ErrConfig)
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}

	// Compared against when the username is unknown, so both failure paths
	// cost one bcrypt comparison.
	dummyHash, err := bcrypt.GenerateFromPassword([]byte("recipebox-dummy-password"), cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("%w: bcrypt cost %d: %v", common.ErrConfig, cfg.BcryptCost, err)
	}

	return &AuthService{
		accountRepo: accountRepo,
		jwtSecret:   []byte(cfg.JWTSecret),
		tokenTTL:    cfg.TokenTTL,
		bcryptCost:  cfg.BcryptCost,
		dummyHash:   dummyHash,
		log:         log,
	}, nil
}

// RegisterUser creates an account with a bcrypt-hashed password.
func (s *AuthService) RegisterUser(ctx context.Context, req models.SignupRequest) (*models.Account, error) {
	name := strings.TrimSpace(req.Name)
	username := strings.TrimSpace(req.Username)

	verr := &common.ValidationError{Fields: map[string]string{}}
	if name == "" {
		verr.Fields["name"] = "is required"
	}
	if username == "" {
		verr.Fields["username"] = "is required"
	}
	if req.Password == "" {
		verr.Fields["password"] = "is required"
	} else if len(req.Password) > maxPasswordBytes {
		verr.Fields["password"] = fmt.Sprintf("must be at most %d bytes", maxPasswordBytes)
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	if _, err := s.accountRepo.GetByUsername(ctx, username); err == nil {
		return nil, fmt.Errorf("username '%s' %w", username, common.ErrConflict)
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, common.NewValidationError("password", fmt.Sprintf("must be at most %d bytes", maxPasswordBytes))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &models.Account{
		Name:         name,
		Username:     username,
		PasswordHash: string(hashedPassword),
	}
	// The unique index still decides when two signups race past the check.
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.log.WithFields(logrus.Fields{"user_id": account.ID, "username": account.Username}).Info("account registered")
	return account, nil
}

// LoginUser verifies credentials and returns a signed access token. Unknown
// usernames and wrong passwords both yield common.ErrInvalidCredentials.
func (s *AuthService) LoginUser(ctx context.Context, username, password string) (string, *models.Account, error) {
	account, err := s.accountRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return "", nil, common.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to load account: %w", err)
	}

	// The cost is read from the stored hash, so older hashes keep working
	// after BCRYPT_COST changes.
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return "", nil, common.ErrInvalidCredentials
	}

	tokenString, err := s.issueToken(account)
	if err != nil {
		return "", nil, err
	}
	return tokenString, account, nil
}

func (s *AuthService) issueToken(account *models.Account) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      account.Username,
		"username": account.Username,
		"user_id":  account.ID,
		"iat":      now.Unix(),
		"exp":      now.Add(s.tokenTTL).Unix(),
		"jti":      uuid.NewString(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and verifies an access token.
func (s *AuthService) ValidateToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, common.ErrInvalidToken
	}

	userID, ok := claims["user_id"].(float64)
	if !ok || userID <= 0 {
		return nil, fmt.Errorf("%w: missing user_id claim", common.ErrInvalidToken)
	}
	username, _ := claims["sub"].(string)
	if username == "" {
		return nil, fmt.Errorf("%w: missing sub claim", common.ErrInvalidToken)
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, fmt.Errorf("%w: missing exp claim", common.ErrInvalidToken)
	}

	return &TokenClaims{
		UserID:    uint(userID),
		Username:  username,
		ExpiresAt: time.Unix(int64(exp), 0),
	}, nil
}
