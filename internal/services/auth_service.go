package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"inventory/internal/metrics"
	"inventory/internal/models"
	"inventory/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for an unknown email or a wrong password alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService handles registration, login and bearer token validation.
type AuthService struct {
	userRepo   repositories.UserRepository
	validate   *validator.Validate
	policy     PasswordPolicy
	metrics    *metrics.Metrics
	jwtSecret  []byte
	tokenDurat time.Duration
}

// NewAuthService creates a new AuthService. m may be nil.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, tokenTTL time.Duration, m *metrics.Metrics) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		userRepo:   userRepo,
		validate:   newValidator(),
		policy:     DefaultPasswordPolicy,
		metrics:    m,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: tokenTTL,
	}
}

// RegisterUser checks the credentials against the email and password rules,
// hashes the password and stores the new user. Rule violations are reported
// together as a *RegistrationError.
func (s *AuthService) RegisterUser(ctx context.Context, creds models.Credentials) (*models.User, error) {
	user, err := s.register(ctx, creds)
	s.metrics.RecordAuthAttempt("register", err)
	return user, err
}

func (s *AuthService) register(ctx context.Context, creds models.Credentials) (*models.User, error) {
	creds.Email = strings.TrimSpace(creds.Email)

	var problems []IdentityError
	if err := s.validate.Var(creds.Email, "required,email,max=255"); err != nil {
		problems = append(problems, IdentityError{
			Code:        "InvalidEmail",
			Description: fmt.Sprintf("Email '%s' is invalid.", creds.Email),
		})
	}
	problems = append(problems, s.policy.Check(creds.Password)...)

	if len(problems) == 0 {
		existing, err := s.userRepo.GetByEmail(ctx, creds.Email)
		switch {
		case err == nil && existing != nil:
			problems = append(problems, IdentityError{
				Code:        "DuplicateEmail",
				Description: fmt.Sprintf("Email '%s' is already taken.", creds.Email),
			})
		case err != nil && !errors.Is(err, repositories.ErrNotFound):
			return nil, err
		}
	}
	if len(problems) > 0 {
		return nil, &RegistrationError{Problems: problems}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        creds.Email,
		PasswordHash: string(hashedPassword),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return user, nil
}

// LoginUser authenticates the user and returns a signed token together with the user.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (string, *models.User, error) {
	token, user, err := s.login(ctx, strings.TrimSpace(email), password)
	s.metrics.RecordAuthAttempt("login", err)
	return token, user, err
}

func (s *AuthService) login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     now.Add(s.tokenDurat).Unix(),
		"iat":     now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, user, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}
