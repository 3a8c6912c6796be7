package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/liAmirali/UIFP-final-project/internal/auth"
	"github.com/liAmirali/UIFP-final-project/internal/models"
	"github.com/liAmirali/UIFP-final-project/internal/services"
)

// Deps are the services the console drives.
type Deps struct {
	Users     *services.UserService
	Catalog   *services.CatalogService
	Sessions  *services.SessionService
	Results   *services.ResultService
	Tokens    *auth.Signer
	ExportDir string
}

// Console is the interactive front end. It keeps the login token of the
// current operator and resolves it to an identity before every action.
type Console struct {
	deps  Deps
	in    *bufio.Reader
	out   io.Writer
	now   func() time.Time
	loc   *time.Location
	token string
}

var errLoggedOut = errors.New("logged out")

func New(deps Deps, in io.Reader, out io.Writer) *Console {
	return &Console{deps: deps, in: bufio.NewReader(in), out: out, now: time.Now, loc: time.Local}
}

// Run serves login sessions until input ends. Only storage failures are
// returned; the caller should exit on them.
func (c *Console) Run() error {
	for {
		err := c.ensureSetup()
		if err == nil {
			err = c.login()
		}
		if err == nil {
			err = c.menu()
		}
		if err != nil {
			return c.exit(err)
		}
	}
}

func (c *Console) exit(err error) error {
	if errors.Is(err, io.EOF) {
		c.printf("Exiting EMS...\n")
		return nil
	}
	log.Printf("console: fatal: %v", err)
	c.printf("*** Error: Make sure you have enough disk space, and the program has read/write permission. ***\n")
	c.printf("Exiting EMS...\n")
	return err
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *Console) printError(err error) {
	msg := err.Error()
	if se, ok := services.AsServiceError(err); ok && se.Err == nil {
		msg = se.Message
	}
	c.printf("\t*** Error: %s ***\n", msg)
}

// report prints a recoverable failure and swallows it. Storage failures and
// input errors pass through.
func (c *Console) report(err error) error {
	if err == nil || errors.Is(err, errLoggedOut) || errors.Is(err, io.EOF) {
		return err
	}
	if services.IsKind(err, services.ErrorStorage) {
		return err
	}
	c.printError(err)
	return nil
}

func (c *Console) ensureSetup() error {
	needs, err := c.deps.Users.NeedsSetup()
	if err != nil || !needs {
		return err
	}
	c.printf("########## Welcome to EMS! ##########\n")
	c.printf("Just because you are the first one running this program, you are registered as the manager.\n")
	for {
		req, err := c.askPerson()
		if err != nil {
			return err
		}
		u, err := c.deps.Users.Setup(req)
		if err = c.report(err); err != nil {
			return err
		}
		if u != nil {
			c.printf("\t%s has been registered as the manager.\n", u.FullName())
			return nil
		}
	}
}

func (c *Console) login() error {
	c.printf("##### Login #####\n")
	for {
		username, err := c.ask("Username: ")
		if err != nil {
			return err
		}
		password, err := c.askRaw("Password: ")
		if err != nil {
			return err
		}
		res, err := c.deps.Users.Login(username, password)
		if err = c.report(err); err != nil {
			return err
		}
		if res == nil {
			continue
		}
		c.token = res.Token
		c.printf("\tSuccess: You've logged in as %s (%s).\n", res.User.FullName(), res.User.Role)
		return nil
	}
}

// identity resolves the login token. An expired or broken token logs the
// operator out.
func (c *Console) identity() (services.Identity, error) {
	id, err := c.deps.Tokens.Identity(c.token)
	if err != nil {
		if auth.Expired(err) {
			c.printf("\t*** Your login has expired, please log in again. ***\n")
		} else {
			log.Printf("console: rejecting login token: %v", err)
		}
		c.token = ""
		return services.Identity{}, errLoggedOut
	}
	return id, nil
}

type menuItem struct {
	label  string
	action func(who services.Identity) error // nil logs out
}

func (c *Console) menuFor(role models.Role) []menuItem {
	switch role {
	case models.RoleManager:
		return []menuItem{
			{"List all students", c.listUsersAction(models.RoleStudent)},
			{"List all professors", c.listUsersAction(models.RoleProfessor)},
			{"List all exams", c.listExams},
			{"Add a new user", c.addUser},
			{"Logout", nil},
		}
	case models.RoleProfessor:
		return []menuItem{
			{"List all students", c.listUsersAction(models.RoleStudent)},
			{"List all exams", c.listExams},
			{"See exam results", c.examResults},
			{"See student answers", c.examAnswers},
			{"Add a new exam", c.addExam},
			{"Export exam results as CSV", c.exportResults},
			{"Logout", nil},
		}
	case models.RoleStudent:
		return []menuItem{
			{"List all exams", c.listExams},
			{"Take an exam", c.takeExam},
			{"Exam results", c.myResult},
			{"Exam answers", c.examAnswers},
			{"Logout", nil},
		}
	}
	return nil
}

func (c *Console) menu() error {
	for {
		who, err := c.identity()
		if err != nil {
			return nil
		}
		items := c.menuFor(who.Role)
		if items == nil {
			return fmt.Errorf("undefined role %q", who.Role)
		}
		name, err := c.deps.Users.FullName(who.Username)
		if err != nil {
			return err
		}
		c.printf("########## Welcome to EMS! %s (Role: %s) ##########\n", name, who.Role)
		c.printf("Today: %s\n", c.formatTime(c.now()))
		c.printf("\t(0) Refresh\n")
		for i, it := range items {
			c.printf("\t(%d) %s\n", i+1, it.label)
		}
		n, err := c.askInt("\nEnter menu option code: ")
		if err != nil {
			if errors.Is(err, errNotNumber) {
				c.printf("\t*** Error: Undefined menu code. Try again. ***\n")
				continue
			}
			return err
		}
		if n == 0 {
			continue
		}
		if n < 0 || n > len(items) {
			c.printf("\t*** Error: Undefined menu code. Try again. ***\n")
			continue
		}
		it := items[n-1]
		if it.action == nil {
			c.token = ""
			c.printf("\tLogged out.\n")
			return nil
		}
		if err := c.report(it.action(who)); err != nil {
			if errors.Is(err, errLoggedOut) {
				return nil
			}
			return err
		}
	}
}
