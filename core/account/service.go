package account

import (
	"context"
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/ayudantias/core"
)

var (
	// errors
	ErrNotFound             = errors.New("account not found")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrUnknownRole          = errors.New("unknown role")
	errResetLinkInvalid     = errors.New("the password reset link is invalid or has expired")
)

type (
	// Source gives access to the accounts of one role.
	// Lookups must return ErrNotFound when no account matches.
	Source interface {
		FindAccountByEmail(ctx context.Context, email string) (Account, error)
		FindAccountByID(ctx context.Context, id string) (Account, error)
		SetAccountPassword(ctx context.Context, id string, hash []byte) error
		SetAccountLastLogin(ctx context.Context, id string, at time.Time) error
	}

	Service struct {
		sources  map[string]Source
		mailSvc  core.EmailService
		tokenGen *TokenGenerator
	}

	passwordResetData struct {
		Name  string
		Role  string
		UID   string
		Token string
	}
)

func NewService(mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{
		sources:  make(map[string]Source, len(AllRoles)),
		mailSvc:  mailSvc,
		tokenGen: NewTokenGenerator(conf.SecretKey, conf.PasswordResetTimeoutDelta),
	}
}

// Register makes the accounts of role available for login and password resets.
func (svc *Service) Register(role string, src Source) {
	svc.sources[role] = src
}

func (svc *Service) source(role string) (Source, error) {
	src, ok := svc.sources[role]
	if !ok {
		return nil, ErrUnknownRole
	}
	return src, nil
}

func (svc *Service) Get(ctx context.Context, role, id string) (Account, error) {
	src, err := svc.source(role)
	if err != nil {
		return nil, err
	}
	return src.FindAccountByID(ctx, id)
}

// Authenticate checks the credentials of an account of the given role and records the login.
func (svc *Service) Authenticate(ctx context.Context, role, email, pwd string) (Account, error) {
	src, err := svc.source(role)
	if err != nil {
		return nil, err
	}
	acc, err := src.FindAccountByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return nil, ErrAuthenticationFailed
		}
		return nil, errors.Wrap(err, "finding account by email")
	}
	if err = acc.AccountCredentials().CheckPassword(pwd); err != nil {
		return nil, ErrAuthenticationFailed
	}
	if err = src.SetAccountLastLogin(ctx, acc.AccountID(), NowFunc().UTC()); err != nil {
		return nil, errors.Wrap(err, "setting last login")
	}
	return acc, nil
}

// RequestPasswordReset emails a reset link to the account owning email.
func (svc *Service) RequestPasswordReset(ctx context.Context, role, email string) error {
	src, err := svc.source(role)
	if err != nil {
		return err
	}
	acc, err := src.FindAccountByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}
	token, err := svc.tokenGen.MakeToken(acc)
	if err != nil {
		return errors.Wrap(err, "making token")
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: acc.AccountName(), Address: acc.AccountEmail()}},
		Subject:      "Restablecer contraseña",
		TemplateName: "password_reset",
		TemplateData: passwordResetData{
			Name:  acc.AccountName(),
			Role:  role,
			UID:   EncodeUID(acc),
			Token: token,
		},
	})
	return nil
}

func (svc *Service) ResetPassword(ctx context.Context, rp ResetPassword) error {
	src, err := svc.source(rp.Role)
	if err != nil {
		return err
	}
	id, err := DecodeUID(rp.UID)
	if err != nil {
		return core.NewFieldValidationError("token", errResetLinkInvalid)
	}
	acc, err := src.FindAccountByID(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return core.NewFieldValidationError("token", errResetLinkInvalid)
		}
		return errors.Wrap(err, "finding account by ID")
	}
	if err = svc.tokenGen.VerifyToken(acc, rp.Token); err != nil {
		return core.NewFieldValidationError("token", errResetLinkInvalid)
	}
	if err = ValidatePassword(rp.Password, acc.AccountName(), acc.AccountEmail()); err != nil {
		return err
	}

	var creds Credentials
	if err = creds.SetPassword(rp.Password); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	return src.SetAccountPassword(ctx, acc.AccountID(), creds.PasswordHash)
}

// SetPassword replaces the password of the account of role owning email, skipping the reset link.
func (svc *Service) SetPassword(ctx context.Context, role, email, pwd string) error {
	src, err := svc.source(role)
	if err != nil {
		return err
	}
	acc, err := src.FindAccountByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}
	if err = ValidatePassword(pwd, acc.AccountName(), acc.AccountEmail()); err != nil {
		return err
	}

	var creds Credentials
	if err = creds.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	return src.SetAccountPassword(ctx, acc.AccountID(), creds.PasswordHash)
}

func (rp *ResetPassword) Validate(validate *validator.Validate) error {
	rp.Role = core.CleanString(rp.Role, true /* lower */)
	return validate.Struct(rp)
}
