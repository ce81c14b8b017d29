package auth

import "time"

// Config drives authentication behavior.
type Config struct {
	Secret          string
	TokenTTL        time.Duration
	RefreshTokenTTL time.Duration
}

// Athlete is a persisted account. Location is the athlete's home forecast
// location, used when a schedule request names none.
type Athlete struct {
	ID           int64
	Email        string
	Name         string
	Location     string
	PasswordHash string
	CreatedAt    time.Time
}

// RegisterRequest captures the registration payload.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

// LoginRequest captures login details.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries a fresh access/refresh token pair.
type LoginResponse struct {
	Token        string      `json:"token"`
	ExpiresAt    time.Time   `json:"expiresAt"`
	RefreshToken string      `json:"refreshToken"`
	Athlete      AthleteView `json:"athlete"`
}

// RefreshRequest encapsulates refresh token payload.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// ProfileUpdate changes the fields that are set.
type ProfileUpdate struct {
	Name     *string `json:"name"`
	Location *string `json:"location"`
}

// AthleteView is the public shape of an Athlete.
type AthleteView struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"createdAt"`
}

// Claims are extracted from a verified token.
type Claims struct {
	AthleteID int64
	Email     string
	TokenType string
	ExpiresAt time.Time
}
