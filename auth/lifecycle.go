package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ApplyInput is the payload of an account application.
type ApplyInput struct {
	Username           string
	Email              string
	Password           string
	ApplicationContent string
}

// SignUpInput is the payload of the legacy direct sign-up path. Accounts
// created this way skip review, carry no email, and start at the standard
// tier unless the admission key elevates them.
type SignUpInput struct {
	Username     string
	Password     string
	DisplayName  string
	AdmissionKey string
}

// Accounts is the lifecycle controller: it orchestrates applications,
// reviews, logins, and token-based identity resolution on top of the
// account store and the token service.
type Accounts struct {
	store   AccountStore
	tokens  *TokenService
	secrets *Secrets
	logger  Logger
	sink    DecisionSink
	now     func() time.Time
}

// NewAccounts wires the controller. All collaborators are explicit; there
// is no ambient state.
func NewAccounts(store AccountStore, tokens *TokenService, secrets *Secrets) *Accounts {
	return &Accounts{
		store:   store,
		tokens:  tokens,
		secrets: secrets,
		logger:  defLogger{},
		sink:    noopDecisionSink{},
		now:     time.Now,
	}
}

// WithLogger overrides the logger.
func (a *Accounts) WithLogger(logger Logger) *Accounts {
	if logger != nil {
		a.logger = logger
	}
	return a
}

// WithDecisionSink registers the notification collaborator invoked after
// every review decision.
func (a *Accounts) WithDecisionSink(sink DecisionSink) *Accounts {
	a.sink = normalizeDecisionSink(sink)
	return a
}

// WithClock injects a custom clock (useful for tests).
func (a *Accounts) WithClock(clock func() time.Time) *Accounts {
	if clock != nil {
		a.now = clock
	}
	return a
}

// ValidateToken decodes a bearer token into its claims snapshot without
// touching the store.
func (a *Accounts) ValidateToken(raw string) (*AccountClaims, error) {
	return a.tokens.Validate(raw)
}

// HealthCheck is the named store diagnostic.
func (a *Accounts) HealthCheck(ctx context.Context) error {
	return a.store.Ping(ctx)
}

// Apply validates and persists an application for the given role. Formats
// and cross-partition uniqueness are always re-checked server-side; the
// advisory availability endpoints are a convenience the client may skip,
// never a substitute. Returns the public projection, never the hash.
func (a *Accounts) Apply(ctx context.Context, role Role, in ApplyInput) (*Profile, error) {
	if role != RoleTester && role != RoleAdmin {
		return nil, goerrors.New("unknown application role", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest)
	}

	if err := a.validateApplication(in); err != nil {
		return nil, err
	}

	if err := a.ensureAvailable(ctx, in.Username, in.Email); err != nil {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	account := &Account{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		AccountType: AccountType{
			PrivilegeLevel: PrivilegeForRole(role),
			Role:           role,
		},
		ApplicationContent: in.ApplicationContent,
		CreatedAt:          a.now(),
	}

	if _, err := a.store.Insert(ctx, PendingPartitionFor(role), account); err != nil {
		return nil, err
	}

	a.logger.Info("account application received: username=%s role=%s", in.Username, role)
	return account.Public(), nil
}

func (a *Accounts) validateApplication(in ApplyInput) error {
	details := map[string][]ViolationCode{}

	username, err := ValidateUsername(in.Username)
	if err != nil {
		return err
	}
	if !username.OK {
		details["username"] = username.Violations
	}

	email, err := ValidateEmail(in.Email)
	if err != nil {
		return err
	}
	if !email.OK {
		details["email"] = email.Violations
	}

	password, err := ValidatePassword(in.Password)
	if err != nil {
		return err
	}
	if !password.OK {
		details["password"] = password.Violations
	}

	if len(details) > 0 {
		return newValidationError(details)
	}
	return nil
}

// ensureAvailable re-checks cross-partition uniqueness right before an
// insert. There is no lock around check-then-insert; a concurrent Apply
// with the same username can slip through the window. See DESIGN.md.
func (a *Accounts) ensureAvailable(ctx context.Context, username, email string) error {
	ok, err := a.store.UsernameAvailable(ctx, username)
	if err != nil {
		return err
	}
	if !ok {
		return ErrIdentifierTaken
	}

	if email != "" {
		ok, err = a.store.EmailAvailable(ctx, email)
		if err != nil {
			return err
		}
		if !ok {
			return ErrIdentifierTaken
		}
	}
	return nil
}

// Decide resolves a pending application. Only reviewers above the tester
// tier may decide. Approval copies the record into the active partition
// first and deletes the pending record second, so a crash in between
// leaves a duplicate rather than a lost application. A failed delete after
// a successful insert is reported, never masked as success.
func (a *Accounts) Decide(ctx context.Context, reviewer *AccountClaims, targetID primitive.ObjectID, approved bool, reason string) error {
	if reviewer == nil || !reviewer.CanReview() {
		return ErrInsufficientPrivilege
	}

	pending, partition, err := a.findPending(ctx, targetID)
	if err != nil {
		return err
	}

	if approved {
		active := &Account{
			Username:     pending.Username,
			Email:        pending.Email,
			PasswordHash: pending.PasswordHash,
			AccountType:  pending.AccountType,
			CreatedAt:    a.now(),
		}
		if _, err := a.store.Insert(ctx, PartitionActive, active); err != nil {
			return err
		}
		if err := a.store.Delete(ctx, partition, pending.ID); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal,
				"application approved but pending record not removed").
				WithCode(goerrors.CodeInternal)
		}
	} else {
		if err := a.store.Delete(ctx, partition, pending.ID); err != nil {
			return err
		}
	}

	a.emitDecision(ctx, pending, approved, reason)
	return nil
}

// findPending looks up the target in the admin partition first, then the
// tester partition. The uniqueness invariant means an id cannot live in
// both.
func (a *Accounts) findPending(ctx context.Context, id primitive.ObjectID) (*Account, Partition, error) {
	for _, p := range []Partition{PartitionPendingAdmins, PartitionPendingTesters} {
		account, err := a.store.FindByID(ctx, p, id)
		if err != nil {
			return nil, "", err
		}
		if account != nil {
			return account, p, nil
		}
	}
	return nil, "", ErrApplicationNotFound
}

func (a *Accounts) emitDecision(ctx context.Context, pending *Account, approved bool, reason string) {
	event := DecisionEvent{
		ApplicationID: pending.ID,
		Username:      pending.Username,
		Email:         pending.Email,
		Role:          pending.AccountType.Role,
		Approved:      approved,
		Reason:        reason,
		OccurredAt:    a.now(),
	}

	if err := normalizeDecisionSink(a.sink).AccountDecided(ctx, event); err != nil {
		a.logger.Warn("decision sink error: %v", err)
	}
}

// Authenticate verifies credentials against the active partition and
// issues a token embedding the account id and the current privilege level.
// The snapshot is not refreshed until the token expires and is reissued.
func (a *Accounts) Authenticate(ctx context.Context, username, password string) (string, error) {
	account, err := a.store.FindByUsername(ctx, PartitionActive, username)
	if err != nil {
		return "", err
	}
	if account == nil {
		return "", ErrAccountNotFound
	}

	if !CheckPassword(password, account.PasswordHash) {
		return "", ErrBadPassword
	}

	return a.tokens.Issue(account.ID, account.PrivilegeLevel())
}

// ResolveIdentity decodes the token and re-fetches the account so that a
// deleted account's still-valid token is rejected. Username and privilege
// come from the stored record, not the token payload. A privilege
// downgrade is not picked up by tokens issued before it; only deletion
// revokes them.
func (a *Accounts) ResolveIdentity(ctx context.Context, raw string) (*Identity, error) {
	claims, err := a.tokens.Validate(raw)
	if err != nil {
		return nil, err
	}

	id, err := claims.AccountID()
	if err != nil {
		return nil, ErrTokenMalformed
	}

	account, err := a.store.FindByID(ctx, PartitionActive, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrNoSuchAccount
	}

	return &Identity{
		ID:             account.ID,
		Username:       account.Username,
		PrivilegeLevel: account.PrivilegeLevel(),
	}, nil
}

// SignUp is the legacy direct sign-up: it creates an active account
// immediately, without review or email. Submitting the provisioned
// admission key elevates the account to the tester tier, mirroring the
// original deployment's bootstrap path.
func (a *Accounts) SignUp(ctx context.Context, in SignUpInput) (*Profile, error) {
	username, err := ValidateUsername(in.Username)
	if err != nil {
		return nil, err
	}
	password, err := ValidatePassword(in.Password)
	if err != nil {
		return nil, err
	}

	details := map[string][]ViolationCode{}
	if !username.OK {
		details["username"] = username.Violations
	}
	if !password.OK {
		details["password"] = password.Violations
	}
	if len(details) > 0 {
		return nil, newValidationError(details)
	}

	if err := a.ensureAvailable(ctx, in.Username, ""); err != nil {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	accountType := AccountType{PrivilegeLevel: PrivilegeStandard, Role: RoleStandard}
	if in.AdmissionKey != "" && a.secrets.AdminAdmissionKeyHash() != "" &&
		CheckPassword(in.AdmissionKey, a.secrets.AdminAdmissionKeyHash()) {
		accountType = AccountType{PrivilegeLevel: PrivilegeTester, Role: RoleTester}
	}

	account := &Account{
		Username:     in.Username,
		DisplayName:  in.DisplayName,
		PasswordHash: hash,
		AccountType:  accountType,
		CreatedAt:    a.now(),
	}

	if _, err := a.store.Insert(ctx, PartitionActive, account); err != nil {
		return nil, err
	}

	a.logger.Info("account created via direct sign-up: username=%s", in.Username)
	return account.Public(), nil
}

// UsernameAvailability runs the advisory pre-check behind the availability
// endpoint: format violations plus a Taken code when any partition already
// holds the username.
func (a *Accounts) UsernameAvailability(ctx context.Context, username string) (ValidationResult, error) {
	res, err := ValidateUsername(username)
	if err != nil {
		return ValidationResult{}, err
	}

	if res.OK {
		available, err := a.store.UsernameAvailable(ctx, username)
		if err != nil {
			return ValidationResult{}, err
		}
		if !available {
			res.OK = false
			res.Violations = append(res.Violations, ViolationTaken)
		}
	}
	return res, nil
}

// EmailAvailability mirrors UsernameAvailability for emails.
func (a *Accounts) EmailAvailability(ctx context.Context, email string) (ValidationResult, error) {
	res, err := ValidateEmail(email)
	if err != nil {
		return ValidationResult{}, err
	}

	if res.OK {
		available, err := a.store.EmailAvailable(ctx, email)
		if err != nil {
			return ValidationResult{}, err
		}
		if !available {
			res.OK = false
			res.Violations = append(res.Violations, ViolationTaken)
		}
	}
	return res, nil
}

// PasswordValidity runs the stateless password pre-check.
func (a *Accounts) PasswordValidity(password string) (ValidationResult, error) {
	return ValidatePassword(password)
}
