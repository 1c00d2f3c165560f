package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuber-eats/nuber/app/dto"
	"github.com/nuber-eats/nuber/app/models"
	"github.com/nuber-eats/nuber/pkg/auth"
)

func TestCreateAccount(t *testing.T) {
	db := newDB(t)
	mailer := &recordingMailer{}
	svc := NewUsersService(db, mailer)
	ctx := context.Background()

	in := dto.CreateAccountInput{Email: "new@nuber.test", Password: "pw", Role: auth.RoleClient}
	require.True(t, svc.CreateAccount(ctx, in).OK)

	var user models.User
	require.NoError(t, db.Where("email = ?", in.Email).First(&user).Error)
	assert.False(t, user.Verified)
	assert.NotEqual(t, "pw", user.Password)
	assert.True(t, auth.CheckPassword(user.Password, "pw"))

	var v models.Verification
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&v).Error)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, []string{in.Email}, mailer.sent[0].Recipients())
	assert.Contains(t, mailer.sent[0].Content(), v.Code)

	assert.Equal(t, dto.Fail("There is a user with that email already"), svc.CreateAccount(ctx, in))
	assert.Equal(t, int64(1), count(t, db, &models.User{}))
}

func TestLogin(t *testing.T) {
	db := newDB(t)
	svc := NewUsersService(db, nil)
	p := seedUser(t, db, "client@nuber.test", auth.RoleClient)
	ctx := context.Background()

	assert.Equal(t, "User not found", svc.Login(ctx, dto.LoginInput{Email: "nobody@nuber.test", Password: "secret"}).Error)
	assert.Equal(t, "Wrong password", svc.Login(ctx, dto.LoginInput{Email: "client@nuber.test", Password: "nope"}).Error)

	out := svc.Login(ctx, dto.LoginInput{Email: "client@nuber.test", Password: "secret"})
	require.True(t, out.OK, out.Error)

	claims, err := auth.ValidateToken(out.Token)
	require.NoError(t, err)
	assert.Equal(t, p.ID, claims.ID)

	principal := auth.NewResolver(svc.Accounts()).Resolve(ctx, out.Token)
	require.NotNil(t, principal)
	assert.Equal(t, auth.RoleClient, principal.Role)
}

func TestUserProfile(t *testing.T) {
	db := newDB(t)
	svc := NewUsersService(db, nil)
	p := seedUser(t, db, "client@nuber.test", auth.RoleClient)
	ctx := context.Background()

	me := svc.Me(ctx, p)
	require.True(t, me.OK)
	assert.Equal(t, "client@nuber.test", me.User.Email)

	assert.Equal(t, "User Not Found", svc.UserProfile(ctx, dto.UserProfileInput{UserID: 999}).Error)
}

func TestEditProfile_NewEmailNeedsVerification(t *testing.T) {
	db := newDB(t)
	mailer := &recordingMailer{}
	svc := NewUsersService(db, mailer)
	p := seedUser(t, db, "client@nuber.test", auth.RoleClient)
	seedUser(t, db, "taken@nuber.test", auth.RoleClient)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", p.ID).Update("verified", true).Error)
	ctx := context.Background()

	taken := "taken@nuber.test"
	assert.Equal(t, "There is a user with that email already", svc.EditProfile(ctx, p, dto.EditProfileInput{Email: &taken}).Error)

	email, password := "moved@nuber.test", "changed"
	require.True(t, svc.EditProfile(ctx, p, dto.EditProfileInput{Email: &email, Password: &password}).OK)

	var user models.User
	require.NoError(t, db.First(&user, p.ID).Error)
	assert.Equal(t, email, user.Email)
	assert.False(t, user.Verified)
	assert.True(t, auth.CheckPassword(user.Password, password))
	assert.Equal(t, int64(1), count(t, db, &models.Verification{}))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, []string{email}, mailer.sent[0].Recipients())
}

func TestVerifyEmail(t *testing.T) {
	db := newDB(t)
	svc := NewUsersService(db, &recordingMailer{})
	ctx := context.Background()
	require.True(t, svc.CreateAccount(ctx, dto.CreateAccountInput{Email: "v@nuber.test", Password: "pw", Role: auth.RoleOwner}).OK)

	var v models.Verification
	require.NoError(t, db.First(&v).Error)

	assert.Equal(t, dto.Fail("Verification not found."), svc.VerifyEmail(ctx, dto.VerifyEmailInput{Code: "bogus"}))
	require.True(t, svc.VerifyEmail(ctx, dto.VerifyEmailInput{Code: v.Code}).OK)

	var user models.User
	require.NoError(t, db.First(&user, v.UserID).Error)
	assert.True(t, user.Verified)
	assert.Zero(t, count(t, db, &models.Verification{}))
	assert.False(t, svc.VerifyEmail(ctx, dto.VerifyEmailInput{Code: v.Code}).OK)
}

func TestGPS(t *testing.T) {
	db := newDB(t)
	svc := NewUsersService(db, nil)
	client := seedUser(t, db, "client@nuber.test", auth.RoleClient)
	other := seedUser(t, db, "other@nuber.test", auth.RoleClient)
	ctx := context.Background()

	created := svc.CreateGPS(ctx, client, dto.CreateGPSInput{Lat: 37.5, Lng: 127.0})
	require.True(t, created.OK)

	lat := 38.0
	assert.Equal(t, "You can't edit that location", svc.EditGPS(ctx, other, dto.EditGPSInput{GPSID: created.GPS.ID, Lat: &lat}).Error)
	assert.Equal(t, "Location not found.", svc.EditGPS(ctx, client, dto.EditGPSInput{GPSID: 999, Lat: &lat}).Error)

	edited := svc.EditGPS(ctx, client, dto.EditGPSInput{GPSID: created.GPS.ID, Lat: &lat})
	require.True(t, edited.OK)
	assert.Equal(t, 38.0, edited.GPS.Lat)
	assert.Equal(t, 127.0, edited.GPS.Lng)
}
