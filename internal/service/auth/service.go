package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/forecourt/backoffice/internal/adapter/cache"
	"github.com/forecourt/backoffice/internal/domain"
	"github.com/forecourt/backoffice/internal/ports"
)

const userCacheTTL = 5 * time.Minute

// Claims are the JWT claims issued by this service. Type distinguishes
// access tokens from refresh tokens so one cannot stand in for the other.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
	Type string `json:"type"`
}

type Service struct {
	userRepo   ports.UserRepository
	cache      ports.Cache
	jwtSecret  []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	log        *zap.Logger
}

func NewService(userRepo ports.UserRepository, c ports.Cache, jwtSecret, issuer string, accessTTL, refreshTTL time.Duration, log *zap.Logger) ports.AuthService {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}

	return &Service{
		userRepo:   userRepo,
		cache:      c,
		jwtSecret:  []byte(jwtSecret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		log:        log,
	}
}

func (s *Service) Login(ctx context.Context, email, password string) (string, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", "", errors.New("invalid credentials")
	}
	if user == nil {
		return "", "", errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", "", errors.New("invalid credentials")
	}

	if user.Status != "Active" {
		return "", "", errors.New("account is not active")
	}

	return s.generateTokens(user)
}

func (s *Service) Register(ctx context.Context, user *domain.User) error {
	existing, err := s.userRepo.FindByEmail(ctx, user.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return errors.New("email already registered")
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashedPwd)

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = domain.UserRoleAttendant
	}
	user.Status = "Active"
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	return s.userRepo.Save(ctx, user)
}

func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.parseToken(refreshToken)
	if err != nil {
		return "", errors.New("invalid refresh token")
	}
	if claims.Type != "refresh" {
		return "", errors.New("not a refresh token")
	}

	user, err := s.userRepo.FindByID(ctx, claims.Subject)
	if err != nil || user == nil {
		return "", errors.New("user not found")
	}

	return s.generateAccessToken(user)
}

func (s *Service) ValidateToken(ctx context.Context, tokenStr string) (*domain.User, error) {
	claims, err := s.parseToken(tokenStr)
	if err != nil {
		return nil, errors.New("invalid token")
	}
	if claims.Type != "access" {
		return nil, errors.New("not an access token")
	}

	return s.lookupUser(ctx, claims.Subject)
}

// lookupUser resolves the token subject, going through the cache so every
// authenticated request does not cost a database round trip.
func (s *Service) lookupUser(ctx context.Context, userID string) (*domain.User, error) {
	key := cache.AuthUserKey(userID)

	if cached, err := s.cache.Get(ctx, key); err == nil && cached != "" {
		var user domain.User
		if err := json.Unmarshal([]byte(cached), &user); err == nil {
			return &user, nil
		}
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user not found")
	}

	if data, err := json.Marshal(user); err == nil {
		if err := s.cache.Set(ctx, key, string(data), userCacheTTL); err != nil {
			s.log.Warn("Failed to cache user", zap.Error(err))
		}
	}

	return user, nil
}

func (s *Service) parseToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Subject == "" {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

func (s *Service) generateTokens(user *domain.User) (string, string, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return "", "", err
	}

	refreshToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    s.issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.refreshTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Type: "refresh",
	})
	refreshTokenStr, err := refreshToken.SignedString(s.jwtSecret)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshTokenStr, nil
}

func (s *Service) generateAccessToken(user *domain.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    s.issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Role: string(user.Role),
		Type: "access",
	})
	return token.SignedString(s.jwtSecret)
}
