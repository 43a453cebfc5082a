package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	authorizer "github.com/localnerve/authorizer-go"
	"github.com/localnerve/recipe-journal/internal/models"
	"github.com/localnerve/recipe-journal/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrInvalidSession is returned when the session cookie does not validate
var ErrInvalidSession = errors.New("session is not valid")

// DefaultProvider is used when the identity carries no signup method
const DefaultProvider = "authorizer"

// SessionIdentity is the social identity behind a validated session
type SessionIdentity struct {
	Provider     string
	SocialID     string
	Email        string
	Nickname     string
	ProfileImage string
}

// SessionValidator validates a session cookie value
type SessionValidator interface {
	ValidateSession(ctx context.Context, cookie string) (*SessionIdentity, error)
}

// AuthorizerValidator validates sessions against an Authorizer instance.
// The client is created on first use.
type AuthorizerValidator struct {
	URL         string
	ClientID    string
	RedirectURL string
	Roles       []string

	once    sync.Once
	client  *authorizer.AuthorizerClient
	initErr error
}

// NewAuthorizerValidator creates a validator for the given Authorizer endpoint
func NewAuthorizerValidator(url, clientID string) *AuthorizerValidator {
	return &AuthorizerValidator{URL: url, ClientID: clientID, Roles: []string{"user"}}
}

func (v *AuthorizerValidator) init(ctx context.Context) error {
	v.once.Do(func() {
		// Ping the Authorizer service first
		if err := utils.PingAuthorizer(ctx, v.URL); err != nil {
			v.initErr = fmt.Errorf("authorizer ping failed: %w", err)
			return
		}

		zap.L().Info("initializing authorizer",
			zap.String("authorizerURL", v.URL),
			zap.String("clientID", v.ClientID))

		client, err := authorizer.NewAuthorizerClient(v.ClientID, v.URL, v.RedirectURL, nil)
		if err != nil {
			v.initErr = fmt.Errorf("failed to create authorizer client: %w", err)
			return
		}
		v.client = client
	})
	return v.initErr
}

// ValidateSession validates a session cookie and returns its identity
func (v *AuthorizerValidator) ValidateSession(ctx context.Context, cookie string) (*SessionIdentity, error) {
	if err := v.init(ctx); err != nil {
		return nil, err
	}

	// Convert roles to []*string
	rolesPtrs := make([]*string, len(v.Roles))
	for i := range v.Roles {
		rolesPtrs[i] = &v.Roles[i]
	}

	res, err := v.client.ValidateSession(&authorizer.ValidateSessionInput{
		Cookie: cookie,
		Roles:  rolesPtrs,
	})
	if err != nil {
		return nil, fmt.Errorf("session validation failed: %w", err)
	}
	if res == nil || !res.IsValid {
		return nil, ErrInvalidSession
	}

	return identityFromUser(res.User)
}

// authorizerUser mirrors the user fields the service reads from Authorizer
type authorizerUser struct {
	ID            string  `json:"id"`
	Email         *string `json:"email"`
	Nickname      *string `json:"nickname"`
	GivenName     *string `json:"given_name"`
	Picture       *string `json:"picture"`
	SignupMethods string  `json:"signup_methods"`
}

// identityFromUser decodes the Authorizer user through its JSON form so the
// service does not depend on the SDK's field layout
func identityFromUser(user interface{}) (*SessionIdentity, error) {
	raw, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session user: %w", err)
	}
	var u authorizerUser
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("failed to decode session user: %w", err)
	}
	if u.ID == "" {
		return nil, ErrInvalidSession
	}

	identity := &SessionIdentity{
		Provider:     DefaultProvider,
		SocialID:     u.ID,
		Email:        deref(u.Email),
		Nickname:     deref(u.Nickname),
		ProfileImage: deref(u.Picture),
	}
	if identity.Nickname == "" {
		identity.Nickname = deref(u.GivenName)
	}
	if methods := strings.Split(u.SignupMethods, ","); len(methods) > 0 && strings.TrimSpace(methods[0]) != "" {
		identity.Provider = strings.TrimSpace(methods[0])
	}
	return identity, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ResolveUser finds the local user for a social identity, creating it with
// default settings on first sight
func ResolveUser(db *gorm.DB, identity *SessionIdentity) (*models.User, error) {
	var user models.User
	err := db.Where("provider = ? AND social_id = ?", identity.Provider, identity.SocialID).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = models.User{
		Provider:     identity.Provider,
		SocialID:     identity.SocialID,
		Nickname:     identity.Nickname,
		Email:        identity.Email,
		ProfileImage: identity.ProfileImage,
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		settings := models.DefaultUserSettings(user.ID)
		return tx.Create(&settings).Error
	})
	if err != nil {
		// A concurrent first request for the same identity may have won the insert
		var existing models.User
		if lookupErr := db.Where("provider = ? AND social_id = ?", identity.Provider, identity.SocialID).First(&existing).Error; lookupErr == nil {
			return &existing, nil
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}
