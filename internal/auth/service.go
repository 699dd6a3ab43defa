package auth

import (
	"context"
	"errors"
	"time"

	"backend-artscope/internal/db"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

type Service struct {
	secret []byte
	db     db.Querier
}

type Claims struct {
	StaffID  string `json:"staff_id"`
	MuseumID string `json:"museum_id"`
	jwt.RegisteredClaims
}

func NewService(secret string, db db.Querier) *Service {
	return &Service{
		secret: []byte(secret),
		db:     db,
	}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (Staff, TokenResponse, error) {
	if req.Email == "" || req.Password == "" || req.MuseumID == "" {
		return Staff{}, TokenResponse{}, errors.New("email, password, museum_id required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return Staff{}, TokenResponse{}, err
	}

	if req.Role == "" {
		req.Role = "curator"
	}
	staff := Staff{
		ID:           uuid.NewString(),
		Email:        req.Email,
		FullName:     req.FullName,
		MuseumID:     req.MuseumID,
		Role:         req.Role,
		PasswordHash: string(hash),
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO museum_staff (id, email, password_hash, full_name, museum_id, role)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at, updated_at
	`, staff.ID, staff.Email, staff.PasswordHash, staff.FullName, staff.MuseumID, staff.Role)
	if err := row.Scan(&staff.CreatedAt, &staff.UpdatedAt); err != nil {
		return Staff{}, TokenResponse{}, err
	}

	tokens, err := s.GenerateTokens(ctx, staff.ID, staff.MuseumID)
	if err != nil {
		return Staff{}, TokenResponse{}, err
	}
	return staff, tokens, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (Staff, TokenResponse, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, email, password_hash, full_name, museum_id, role, created_at, updated_at
		FROM museum_staff WHERE email = $1
	`, req.Email)

	var staff Staff
	if err := row.Scan(&staff.ID, &staff.Email, &staff.PasswordHash, &staff.FullName, &staff.MuseumID, &staff.Role, &staff.CreatedAt, &staff.UpdatedAt); err != nil {
		return Staff{}, TokenResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(req.Password)); err != nil {
		return Staff{}, TokenResponse{}, errors.New("invalid credentials")
	}

	tokens, err := s.GenerateTokens(ctx, staff.ID, staff.MuseumID)
	if err != nil {
		return Staff{}, TokenResponse{}, err
	}
	return staff, tokens, nil
}

func (s *Service) GenerateTokens(ctx context.Context, staffID, museumID string) (TokenResponse, error) {
	access, err := s.signToken(staffID, museumID, accessTokenTTL)
	if err != nil {
		return TokenResponse{}, err
	}

	refresh, err := s.signToken(staffID, museumID, refreshTokenTTL)
	if err != nil {
		return TokenResponse{}, err
	}

	if err := s.saveRefreshToken(ctx, refresh, staffID, refreshTokenTTL); err != nil {
		return TokenResponse{}, err
	}

	return TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(accessTokenTTL.Seconds()),
	}, nil
}

func (s *Service) ValidateRefreshToken(ctx context.Context, token string) (string, string, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return "", "", err
	}

	staffID, expiresAt, err := s.lookupRefreshToken(ctx, token)
	if err != nil || staffID != claims.StaffID || time.Now().After(expiresAt) {
		return "", "", errors.New("refresh token invalid")
	}
	return claims.StaffID, claims.MuseumID, nil
}

func (s *Service) ValidateAccessToken(token string) (string, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return "", err
	}
	return claims.StaffID, nil
}

func (s *Service) signToken(staffID, museumID string, ttl time.Duration) (string, error) {
	claims := Claims{
		StaffID:  staffID,
		MuseumID: museumID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) parseToken(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("token invalid")
	}
	return claims, nil
}

func (s *Service) saveRefreshToken(ctx context.Context, token, staffID string, ttl time.Duration) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO staff_refresh_tokens (id, staff_id, token, expires_at)
		VALUES ($1,$2,$3,$4)
	`, uuid.NewString(), staffID, token, time.Now().Add(ttl))
	return err
}

func (s *Service) lookupRefreshToken(ctx context.Context, token string) (string, time.Time, error) {
	row := s.db.QueryRow(ctx, `
		SELECT staff_id, expires_at
		FROM staff_refresh_tokens
		WHERE token = $1 AND revoked_at IS NULL
	`, token)
	var staffID string
	var expiresAt time.Time
	if err := row.Scan(&staffID, &expiresAt); err != nil {
		return "", time.Time{}, err
	}
	return staffID, expiresAt, nil
}
