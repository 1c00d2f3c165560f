package services

import (
	"context"
	"errors"
	"html/template"

	"gorm.io/gorm"

	"github.com/nuber-eats/nuber/app/dto"
	"github.com/nuber-eats/nuber/app/models"
	"github.com/nuber-eats/nuber/app/repositories"
	"github.com/nuber-eats/nuber/pkg/auth"
	"github.com/nuber-eats/nuber/pkg/logger"
	"github.com/nuber-eats/nuber/pkg/mail"
	"github.com/nuber-eats/nuber/pkg/orm"
)

const (
	errEmailTaken        = "There is a user with that email already"
	errCreateAccount     = "Couldn't create account"
	errLoginUserNotFound = "User not found"
	errWrongPassword     = "Wrong password"
	errLogin             = "Could not log in"
	errProfileNotFound   = "User Not Found"
	errEditProfile       = "Could not update profile."
	errVerification      = "Verification not found."
	errVerifyEmail       = "Could not verify email."
	errGPSNotFound       = "Location not found."
	errGPSNotYours       = "You can't edit that location"
	errSaveGPS           = "Could not save location."
)

var errEmailInUse = errors.New(errEmailTaken)

var verifyEmailTemplate = template.Must(template.New("verify-email").Parse(
	`<h1>Verify your email</h1><p>Please confirm your account with this code:</p><p><b>{{.Code}}</b></p>`))

// Mailer queues outbound mail without waiting for delivery.
type Mailer interface {
	Enqueue(m *mail.Message) error
}

type UsersService struct {
	db     *gorm.DB
	users  *repositories.UserRepository
	mailer Mailer
}

func NewUsersService(db *gorm.DB, mailer Mailer) *UsersService {
	return &UsersService{db: db, users: repositories.NewUserRepository(db), mailer: mailer}
}

// Accounts exposes the repository as the identity resolver's account source.
func (s *UsersService) Accounts() auth.AccountFinder { return s.users }

func (s *UsersService) CreateAccount(ctx context.Context, in dto.CreateAccountInput) dto.Output {
	log := logger.WithCtx(ctx)

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		log.Error("users: hash password", "error", err)
		return dto.Fail(errCreateAccount)
	}

	var code string
	err = orm.Use(s.db).Transaction(ctx, func(tx *orm.Query) error {
		users := repositories.NewUserRepository(tx.Gorm())

		exists, err := users.FindByEmail(ctx, in.Email)
		if err != nil {
			return err
		}
		if exists != nil {
			return errEmailInUse
		}

		user := &models.User{Email: in.Email, Password: hash, Role: in.Role}
		if err := users.Create(ctx, user); err != nil {
			return err
		}
		v := &models.Verification{UserID: user.ID}
		if err := users.CreateVerification(ctx, v); err != nil {
			return err
		}
		code = v.Code
		return nil
	})
	if errors.Is(err, errEmailInUse) {
		return dto.Fail(errEmailTaken)
	}
	if err != nil {
		log.Error("users: create account", "error", err)
		return dto.Fail(errCreateAccount)
	}

	s.sendVerification(ctx, in.Email, code)
	return dto.OK()
}

func (s *UsersService) Login(ctx context.Context, in dto.LoginInput) dto.LoginOutput {
	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		logger.WithCtx(ctx).Error("users: login lookup", "error", err)
		return dto.LoginOutput{Output: dto.Fail(errLogin)}
	}
	if user == nil {
		return dto.LoginOutput{Output: dto.Fail(errLoginUserNotFound)}
	}
	if !auth.CheckPassword(user.Password, in.Password) {
		return dto.LoginOutput{Output: dto.Fail(errWrongPassword)}
	}

	token, err := auth.GenerateToken(user.ID)
	if err != nil {
		logger.WithCtx(ctx).Error("users: sign token", "user_id", user.ID, "error", err)
		return dto.LoginOutput{Output: dto.Fail(errLogin)}
	}
	return dto.LoginOutput{Output: dto.OK(), Token: token}
}

// Me returns the caller's own account.
func (s *UsersService) Me(ctx context.Context, p *auth.Principal) dto.UserProfileOutput {
	if p == nil {
		return dto.UserProfileOutput{Output: dto.Fail(errProfileNotFound)}
	}
	return s.UserProfile(ctx, dto.UserProfileInput{UserID: p.ID})
}

func (s *UsersService) UserProfile(ctx context.Context, in dto.UserProfileInput) dto.UserProfileOutput {
	user, err := s.users.FindByID(ctx, in.UserID)
	if err != nil {
		logger.WithCtx(ctx).Error("users: profile lookup", "user_id", in.UserID, "error", err)
	}
	if err != nil || user == nil {
		return dto.UserProfileOutput{Output: dto.Fail(errProfileNotFound)}
	}
	return dto.UserProfileOutput{Output: dto.OK(), User: user}
}

// EditProfile changes the caller's email and/or password. A new email must
// be verified again.
func (s *UsersService) EditProfile(ctx context.Context, p *auth.Principal, in dto.EditProfileInput) dto.Output {
	log := logger.WithCtx(ctx)

	var newHash string
	if in.Password != nil {
		h, err := auth.HashPassword(*in.Password)
		if err != nil {
			log.Error("users: hash password", "error", err)
			return dto.Fail(errEditProfile)
		}
		newHash = h
	}

	var (
		email string
		code  string
	)
	err := orm.Use(s.db).Transaction(ctx, func(tx *orm.Query) error {
		users := repositories.NewUserRepository(tx.Gorm())

		user, err := users.FindByID(ctx, p.ID)
		if err != nil {
			return err
		}
		if user == nil {
			return orm.ErrNotFound
		}

		if in.Email != nil && *in.Email != user.Email {
			taken, err := users.FindByEmail(ctx, *in.Email)
			if err != nil {
				return err
			}
			if taken != nil {
				return errEmailInUse
			}
			user.Email = *in.Email
			user.Verified = false

			if err := users.DeleteVerificationsFor(ctx, user.ID); err != nil {
				return err
			}
			v := &models.Verification{UserID: user.ID}
			if err := users.CreateVerification(ctx, v); err != nil {
				return err
			}
			email, code = user.Email, v.Code
		}
		if newHash != "" {
			user.Password = newHash
		}
		return users.Update(ctx, user)
	})
	switch {
	case errors.Is(err, errEmailInUse):
		return dto.Fail(errEmailTaken)
	case orm.IsNotFound(err):
		return dto.Fail(errProfileNotFound)
	case err != nil:
		log.Error("users: edit profile", "user_id", p.ID, "error", err)
		return dto.Fail(errEditProfile)
	}

	if code != "" {
		s.sendVerification(ctx, email, code)
	}
	return dto.OK()
}

// VerifyEmail marks the owner of code as verified and consumes the code.
func (s *UsersService) VerifyEmail(ctx context.Context, in dto.VerifyEmailInput) dto.Output {
	var missing bool
	err := orm.Use(s.db).Transaction(ctx, func(tx *orm.Query) error {
		users := repositories.NewUserRepository(tx.Gorm())

		v, err := users.FindVerification(ctx, in.Code)
		if err != nil {
			return err
		}
		if v == nil || v.User == nil {
			missing = true
			return nil
		}
		v.User.Verified = true
		if err := users.Update(ctx, v.User); err != nil {
			return err
		}
		return users.DeleteVerification(ctx, v.ID)
	})
	if err != nil {
		logger.WithCtx(ctx).Error("users: verify email", "error", err)
		return dto.Fail(errVerifyEmail)
	}
	if missing {
		return dto.Fail(errVerification)
	}
	return dto.OK()
}

// CreateGPS records a location for the calling client.
func (s *UsersService) CreateGPS(ctx context.Context, p *auth.Principal, in dto.CreateGPSInput) dto.GPSOutput {
	gps := &models.UserGPS{Lat: in.Lat, Lng: in.Lng, UserID: p.ID}
	if err := s.users.CreateGPS(ctx, gps); err != nil {
		logger.WithCtx(ctx).Error("users: create gps", "user_id", p.ID, "error", err)
		return dto.GPSOutput{Output: dto.Fail(errSaveGPS)}
	}
	return dto.GPSOutput{Output: dto.OK(), GPS: gps}
}

// EditGPS updates one of the caller's own locations.
func (s *UsersService) EditGPS(ctx context.Context, p *auth.Principal, in dto.EditGPSInput) dto.GPSOutput {
	gps, err := s.users.FindGPS(ctx, in.GPSID)
	if err != nil {
		logger.WithCtx(ctx).Error("users: load gps", "gps_id", in.GPSID, "error", err)
		return dto.GPSOutput{Output: dto.Fail(errSaveGPS)}
	}
	if gps == nil {
		return dto.GPSOutput{Output: dto.Fail(errGPSNotFound)}
	}
	if gps.UserID != p.ID {
		return dto.GPSOutput{Output: dto.Fail(errGPSNotYours)}
	}

	if in.Lat != nil {
		gps.Lat = *in.Lat
	}
	if in.Lng != nil {
		gps.Lng = *in.Lng
	}
	if err := s.users.UpdateGPS(ctx, gps); err != nil {
		logger.WithCtx(ctx).Error("users: update gps", "gps_id", gps.ID, "error", err)
		return dto.GPSOutput{Output: dto.Fail(errSaveGPS)}
	}
	return dto.GPSOutput{Output: dto.OK(), GPS: gps}
}

// sendVerification queues the confirmation mail. Failures are logged only.
func (s *UsersService) sendVerification(ctx context.Context, email, code string) {
	if s.mailer == nil {
		return
	}
	msg, err := mail.To(email).Subject("Verify Your Email").Render(verifyEmailTemplate, map[string]string{"Code": code})
	if err == nil {
		err = s.mailer.Enqueue(msg)
	}
	if err != nil {
		logger.WithCtx(ctx).Warn("users: verification mail not queued", "email", email, "error", err)
	}
}
