package services

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/liAmirali/UIFP-final-project/internal/models"
	"github.com/liAmirali/UIFP-final-project/internal/records"
)

type UserStore interface {
	HasUsers() (bool, error)
	FindUser(username string) (*models.User, error)
	AddUser(u *models.User) error
	ListUsers() ([]models.User, error)
	CreateLedger(username string) error
}

type TokenSigner func(username string, role models.Role, ttl time.Duration) (string, error)

type UserService struct {
	store     UserStore
	signToken TokenSigner
	tokenTTL  time.Duration
	hashCost  int
}

type RegisterRequest struct {
	FirstName string `validate:"required,max=127" label:"first name"`
	LastName  string `validate:"required,max=127" label:"last name"`
	Username  string `validate:"required,max=64,excludesall=/\\ " label:"username"`
	Password  string `validate:"min=8,max=72" label:"password"`
	Role      string `validate:"required,oneof=M P S" label:"role"`
}

type LoginResult struct {
	Token    string
	Identity Identity
	User     models.User
}

func NewUserService(store UserStore, signer TokenSigner, ttl time.Duration) *UserService {
	return &UserService{store: store, signToken: signer, tokenTTL: ttl, hashCost: bcrypt.DefaultCost}
}

// NeedsSetup reports whether no user exists yet.
func (s *UserService) NeedsSetup() (bool, error) {
	has, err := s.store.HasUsers()
	if err != nil {
		return false, NewStorageError("could not read users", err)
	}
	return !has, nil
}

// Setup registers the first user as the one manager.
func (s *UserService) Setup(req RegisterRequest) (*models.User, error) {
	empty, err := s.NeedsSetup()
	if err != nil {
		return nil, err
	}
	if !empty {
		return nil, NewForbiddenError("the manager is already registered")
	}
	req.Role = string(models.RoleManager)
	return s.register(req)
}

// Register adds a student or professor. Only the manager registers users.
func (s *UserService) Register(who Identity, req RegisterRequest) (*models.User, error) {
	if who.Role != models.RoleManager {
		return nil, NewForbiddenError("only the manager can register users")
	}
	role, ok := models.ParseRole(req.Role)
	if !ok || role == models.RoleManager {
		return nil, NewInvalidError("the entered role was undefined, please enter either S or P")
	}
	req.Role = string(role)
	return s.register(req)
}

func (s *UserService) register(req RegisterRequest) (*models.User, error) {
	req.FirstName = capitalize(strings.TrimSpace(req.FirstName))
	req.LastName = capitalize(strings.TrimSpace(req.LastName))
	req.Username = strings.TrimSpace(req.Username)
	if err := checkStruct(req); err != nil {
		return nil, err
	}
	// Usernames are keys; they must fit their field without truncation.
	if len(req.Username) >= models.TextWidth {
		return nil, NewInvalidError(fmt.Sprintf("username must be at most %d bytes", models.TextWidth-1))
	}
	existing, err := s.store.FindUser(req.Username)
	if err != nil {
		return nil, NewStorageError("could not read users", err)
	}
	if existing != nil {
		return nil, NewDuplicateError("username exists, enter another one")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, NewInvalidError(err.Error())
	}
	u := &models.User{
		FirstName:    records.Bound(req.FirstName, models.TextWidth),
		LastName:     records.Bound(req.LastName, models.TextWidth),
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         models.Role(req.Role[0]),
	}
	if u.Role == models.RoleStudent {
		if err := s.store.CreateLedger(u.Username); err != nil {
			return nil, NewStorageError("could not create completion ledger", err)
		}
	}
	if err := s.store.AddUser(u); err != nil {
		return nil, NewStorageError("could not save user info", err)
	}
	return u, nil
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func (s *UserService) Login(username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, NewInvalidError("username/password required")
	}
	u, err := s.store.FindUser(username)
	if err != nil {
		return nil, NewStorageError("could not read users", err)
	}
	if u == nil {
		return nil, NewUnauthorizedError("the username or password you entered is incorrect")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, NewUnauthorizedError("the username or password you entered is incorrect")
	}
	if s.signToken == nil {
		return nil, NewInvalidError("token signer not configured")
	}
	token, err := s.signToken(u.Username, u.Role, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, Identity: Identity{Username: u.Username, Role: u.Role}, User: *u}, nil
}

// ListUsers returns users of one role sorted by last name.
func (s *UserService) ListUsers(role models.Role) ([]models.User, error) {
	all, err := s.store.ListUsers()
	if err != nil {
		return nil, NewStorageError("could not read users", err)
	}
	out := make([]models.User, 0, len(all))
	for _, u := range all {
		if u.Role == role {
			out = append(out, u)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].LastName < out[j].LastName })
	return out, nil
}

// FullName returns "First Last", or "Undefined" for an unknown username.
func (s *UserService) FullName(username string) (string, error) {
	u, err := s.store.FindUser(username)
	if err != nil {
		return "", NewStorageError("could not read users", err)
	}
	if u == nil {
		return "Undefined", nil
	}
	return u.FullName(), nil
}

func (s *UserService) TokenTTL() time.Duration {
	return s.tokenTTL
}
