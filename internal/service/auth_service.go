package service

import (
	"context"
	"errors"
	"time"

	"alcyxob/coach-engine/internal/domain"
	"alcyxob/coach-engine/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrAthleteAlreadyExists = errors.New("athlete with this email already exists")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
)

type AuthService interface {
	Register(ctx context.Context, name, email, password string, style domain.SchedulingStyle) (*domain.Athlete, error)
	Login(ctx context.Context, email, password string) (token string, athlete *domain.Athlete, err error)
	UpdateStyle(ctx context.Context, athleteID primitive.ObjectID, style domain.SchedulingStyle) (*domain.Athlete, error)
	GetJWTSecret() string
}

// authService implements the AuthService interface.
type authService struct {
	athleteRepo   repository.AthleteRepository
	jwtSecret     string
	jwtExpiration time.Duration
}

// NewAuthService creates a new instance of authService.
func NewAuthService(athleteRepo repository.AthleteRepository, jwtSecret string, jwtExpiration time.Duration) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if jwtExpiration <= 0 {
		jwtExpiration = time.Hour * 1
	}
	return &authService{
		athleteRepo:   athleteRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

// Register handles new athlete registration.
func (s *authService) Register(ctx context.Context, name, email, password string, style domain.SchedulingStyle) (*domain.Athlete, error) {
	if name == "" || email == "" || password == "" {
		return nil, errors.New("name, email, and password cannot be empty")
	}

	_, err := s.athleteRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrAthleteAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrHashingFailed
	}

	athlete := &domain.Athlete{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Style:        style,
		// ID, CreatedAt, UpdatedAt set by the repository layer
	}

	athleteID, err := s.athleteRepo.Create(ctx, athlete)
	if err != nil {
		return nil, err
	}
	athlete.ID = athleteID

	// Remove password hash before returning
	athlete.PasswordHash = ""
	return athlete, nil
}

// Login handles athlete authentication and JWT generation.
func (s *authService) Login(ctx context.Context, email, password string) (token string, athlete *domain.Athlete, err error) {
	if email == "" || password == "" {
		err = errors.New("email and password cannot be empty")
		return
	}

	athlete, err = s.athleteRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			err = ErrAuthenticationFailed
			return
		}
		return
	}

	err = bcrypt.CompareHashAndPassword([]byte(athlete.PasswordHash), []byte(password))
	if err != nil {
		err = ErrAuthenticationFailed
		athlete = nil
		return
	}

	token, err = s.generateJWT(athlete)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	athlete.PasswordHash = ""
	return token, athlete, nil
}

// UpdateStyle changes the athlete's scheduling style and returns the
// updated profile.
func (s *authService) UpdateStyle(ctx context.Context, athleteID primitive.ObjectID, style domain.SchedulingStyle) (*domain.Athlete, error) {
	if err := s.athleteRepo.UpdateStyle(ctx, athleteID, style); err != nil {
		return nil, err
	}
	athlete, err := s.athleteRepo.GetByID(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	athlete.PasswordHash = ""
	return athlete, nil
}

// --- JWT Helper ---

// jwtClaims defines the structure of the JWT payload.
type jwtClaims struct {
	AthleteID string `json:"aid"`
	jwt.RegisteredClaims
}

// generateJWT creates a new JWT token for the given athlete.
func (s *authService) generateJWT(athlete *domain.Athlete) (string, error) {
	expirationTime := time.Now().Add(s.jwtExpiration)
	claims := &jwtClaims{
		AthleteID: athlete.ID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   athlete.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "coach-engine",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}
	return signedToken, nil
}

// GetJWTSecret returns the JWT secret for middleware authentication
func (s *authService) GetJWTSecret() string {
	return s.jwtSecret
}
