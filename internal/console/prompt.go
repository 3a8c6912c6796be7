package console

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/liAmirali/UIFP-final-project/internal/services"
)

var errNotNumber = errors.New("not a number")

// readLine returns the next input line without its terminator. A final line
// without a newline is still returned; io.EOF follows it.
func (c *Console) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *Console) askRaw(prompt string) (string, error) {
	c.printf("\t%s", prompt)
	return c.readLine()
}

func (c *Console) ask(prompt string) (string, error) {
	s, err := c.askRaw(prompt)
	return strings.TrimSpace(s), err
}

// askRequired repeats the prompt until a non-blank answer is given.
func (c *Console) askRequired(prompt string) (string, error) {
	for {
		s, err := c.ask(prompt)
		if err != nil || s != "" {
			return s, err
		}
		c.printf("\t*** Error: This field cannot be empty. ***\n")
	}
}

func (c *Console) askInt(prompt string) (int, error) {
	s, err := c.ask(prompt)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errNotNumber
	}
	return n, nil
}

// askYesNo accepts y/Y or n/N and repeats on anything else.
func (c *Console) askYesNo(prompt string) (bool, error) {
	for {
		s, err := c.ask(prompt)
		if err != nil {
			return false, err
		}
		switch s {
		case "y", "Y":
			return true, nil
		case "n", "N":
			return false, nil
		}
		c.printf("\t*** Error: Invalid input, enter either y or n ***\n")
	}
}

func (c *Console) askTime(prompt string) (time.Time, error) {
	for {
		s, err := c.ask(prompt + " (YYYY-MM-DD hh:mm:ss):\n\t")
		if err != nil {
			return time.Time{}, err
		}
		t, err := time.ParseInLocation(services.TimeLayout, s, c.loc)
		if err == nil {
			return t, nil
		}
		c.printf("\t*** Error: Invalid date format, use YYYY-MM-DD hh:mm:ss ***\n")
	}
}

func (c *Console) askPerson() (services.RegisterRequest, error) {
	var req services.RegisterRequest
	var err error
	if req.FirstName, err = c.askRequired("First name: "); err != nil {
		return req, err
	}
	if req.LastName, err = c.askRequired("Last name: "); err != nil {
		return req, err
	}
	if req.Username, err = c.askRequired("Username: "); err != nil {
		return req, err
	}
	req.Password, err = c.askPassword()
	return req, err
}

func (c *Console) askPassword() (string, error) {
	for {
		first, err := c.askRaw("Create a password: ")
		if err != nil {
			return "", err
		}
		second, err := c.askRaw("Repeat the password: ")
		if err != nil {
			return "", err
		}
		if first == second {
			return first, nil
		}
		c.printf("\tPasswords do not match. Try again!\n")
	}
}

func (c *Console) formatTime(t time.Time) string {
	return t.In(c.loc).Format(services.TimeLayout)
}

func formatDuration(d time.Duration) string {
	d = d.Truncate(time.Second)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
