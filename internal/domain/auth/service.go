package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/yanqian/runplanner/pkg/errors"
)

// Service manages athlete accounts and the tokens that guard the planner API.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (AthleteView, error)
	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)
	ValidateToken(ctx context.Context, token string) (Claims, error)
	Refresh(ctx context.Context, refreshToken string) (LoginResponse, error)
	Profile(ctx context.Context, athleteID int64) (AthleteView, error)
	UpdateProfile(ctx context.Context, athleteID int64, update ProfileUpdate) (AthleteView, error)
}

type service struct {
	cfg    Config
	repo   Repository
	tokens tokenIssuer
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs a Service instance.
func NewService(cfg Config, repo Repository, logger *slog.Logger) Service {
	return &service{
		cfg:    cfg,
		repo:   repo,
		tokens: tokenIssuer{secret: []byte(cfg.Secret)},
		logger: logger.With("component", "auth.service"),
		now:    time.Now,
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (AthleteView, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return AthleteView{}, apperrors.Wrap(CodeInvalidInput, "invalid email address", err)
	}
	name, err := normalizeName(req.Name)
	if err != nil {
		return AthleteView{}, apperrors.Wrap(CodeInvalidInput, err.Error(), nil)
	}
	location, err := normalizeLocation(req.Location)
	if err != nil {
		return AthleteView{}, apperrors.Wrap(CodeInvalidInput, err.Error(), nil)
	}
	if err := validatePassword(req.Password); err != nil {
		return AthleteView{}, apperrors.Wrap(CodeInvalidInput, err.Error(), nil)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return AthleteView{}, apperrors.Wrap(codeInternal, "failed to hash password", err)
	}
	// The repository enforces email uniqueness, so there is no separate lookup.
	athlete, err := s.repo.Create(ctx, Athlete{
		Email:        email,
		Name:         name,
		Location:     location,
		PasswordHash: string(hashed),
	})
	if errors.Is(err, ErrEmailExists) {
		return AthleteView{}, apperrors.Wrap(CodeEmailExists, "email already registered", err)
	}
	if err != nil {
		return AthleteView{}, apperrors.Wrap(codeInternal, "failed to create athlete", err)
	}
	s.logger.Info("athlete registered", "athlete_id", athlete.ID)
	return toView(athlete), nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return LoginResponse{}, apperrors.Wrap(CodeInvalidInput, "invalid email address", err)
	}
	if strings.TrimSpace(req.Password) == "" {
		return LoginResponse{}, apperrors.Wrap(CodeInvalidInput, "password cannot be empty", nil)
	}
	athlete, found, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return LoginResponse{}, apperrors.Wrap(codeInternal, "failed to fetch athlete", err)
	}
	// Unknown email and wrong password look the same to the caller.
	if !found || bcrypt.CompareHashAndPassword([]byte(athlete.PasswordHash), []byte(req.Password)) != nil {
		return LoginResponse{}, apperrors.Wrap(CodeInvalidCredentials, "invalid email or password", nil)
	}
	return s.issue(athlete)
}

func (s *service) ValidateToken(_ context.Context, token string) (Claims, error) {
	if strings.TrimSpace(token) == "" {
		return Claims{}, apperrors.Wrap(CodeInvalidToken, "token missing", nil)
	}
	return s.tokens.verify(token, tokenTypeAccess, s.now())
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (LoginResponse, error) {
	claims, err := s.tokens.verify(refreshToken, tokenTypeRefresh, s.now())
	if err != nil {
		return LoginResponse{}, err
	}
	athlete, err := s.load(ctx, claims.AthleteID)
	if err != nil {
		return LoginResponse{}, err
	}
	return s.issue(athlete)
}

func (s *service) Profile(ctx context.Context, athleteID int64) (AthleteView, error) {
	athlete, err := s.load(ctx, athleteID)
	if err != nil {
		return AthleteView{}, err
	}
	return toView(athlete), nil
}

func (s *service) UpdateProfile(ctx context.Context, athleteID int64, update ProfileUpdate) (AthleteView, error) {
	athlete, err := s.load(ctx, athleteID)
	if err != nil {
		return AthleteView{}, err
	}
	name, location := athlete.Name, athlete.Location
	if update.Name != nil {
		if name, err = normalizeName(*update.Name); err != nil {
			return AthleteView{}, apperrors.Wrap(CodeInvalidInput, err.Error(), nil)
		}
	}
	if update.Location != nil {
		if location, err = normalizeLocation(*update.Location); err != nil {
			return AthleteView{}, apperrors.Wrap(CodeInvalidInput, err.Error(), nil)
		}
	}

	updated, found, err := s.repo.UpdateProfile(ctx, athleteID, name, location)
	if err != nil {
		return AthleteView{}, apperrors.Wrap(codeInternal, "failed to update profile", err)
	}
	if !found {
		return AthleteView{}, apperrors.Wrap(CodeAthleteNotFound, "athlete not found", nil)
	}
	s.logger.Info("athlete profile updated", "athlete_id", athleteID, "location_changed", location != athlete.Location)
	return toView(updated), nil
}

func (s *service) load(ctx context.Context, athleteID int64) (Athlete, error) {
	athlete, found, err := s.repo.GetByID(ctx, athleteID)
	if err != nil {
		return Athlete{}, apperrors.Wrap(codeInternal, "failed to load athlete", err)
	}
	if !found {
		return Athlete{}, apperrors.Wrap(CodeAthleteNotFound, "athlete not found", nil)
	}
	return athlete, nil
}

// issue signs a new access/refresh pair.
func (s *service) issue(athlete Athlete) (LoginResponse, error) {
	now := s.now()
	access, expires, err := s.tokens.sign(athlete, tokenTypeAccess, s.cfg.TokenTTL, now)
	if err != nil {
		return LoginResponse{}, err
	}
	refresh, _, err := s.tokens.sign(athlete, tokenTypeRefresh, s.cfg.RefreshTokenTTL, now)
	if err != nil {
		return LoginResponse{}, err
	}
	return LoginResponse{
		Token:        access,
		ExpiresAt:    expires,
		RefreshToken: refresh,
		Athlete:      toView(athlete),
	}, nil
}

func toView(athlete Athlete) AthleteView {
	return AthleteView{
		ID:        athlete.ID,
		Email:     athlete.Email,
		Name:      athlete.Name,
		Location:  athlete.Location,
		CreatedAt: athlete.CreatedAt,
	}
}
