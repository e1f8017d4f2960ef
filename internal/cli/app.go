package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/socialride/identity/internal/cli/config"
	"github.com/socialride/identity/internal/common"
	"github.com/socialride/identity/internal/netx"
)

type App struct {
	config  *config.Config
	client  *Client
	reader  *bufio.Reader
	session *storedSession
}

func NewApp(c *config.Config) (*App, error) {
	sess, err := loadSession()
	if err != nil {
		log.Printf("could not load cached session: %s", err.Error())
	}
	return &App{
		config:  c,
		client:  NewClient(c),
		reader:  bufio.NewReader(os.Stdin),
		session: sess,
	}, nil
}

func (a *App) isLoggedIn() bool {
	return a.session != nil && a.session.AccessToken != ""
}

func (a *App) getStatus() string {
	if a.session == nil || a.session.FirstName == "" {
		return ""
	}
	return fmt.Sprintf("(%s)", a.session.FirstName)
}

func (a *App) Run(ctx context.Context) {
	a.Root(ctx)
}

func (a *App) Root(ctx context.Context) {

	log.Println("Welcome to SocialRide CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("sride %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Println("Available commands: refresh, avatar <file>, whoami, logout, exit")
			} else {
				fmt.Println("Available commands: register, login, availability, exit")
			}

		case "register":
			a.Register(ctx)
		case "login":
			a.Login(ctx)
		case "availability":
			a.Availability(ctx)
		case "refresh":
			a.Refresh(ctx)
		case "avatar":
			if len(args) == 0 {
				fmt.Println("Usage: avatar <file>")
				continue
			}
			a.UploadAvatar(ctx, args[0])
		case "whoami":
			a.WhoAmI()
		case "logout":
			a.Logout()
		case "exit", "quit":
			fmt.Println("Bye!")
			return
		default:
			fmt.Println("Unknown command:", cmd)
		}
	}

}

func (a *App) Login(ctx context.Context) {
	username, err := GetSimpleText(a.reader, "Enter user name", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return
	}
	password, err := GetPassword(os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return
	}
	defer common.WipeByteArray(password)

	sess, err := a.client.Authenticate(ctx, username, string(password))
	if err != nil {
		fmt.Println(err.Error())
		return
	}

	a.session = &storedSession{
		UserID:       sess.ID,
		FirstName:    sess.FirstName,
		AccessToken:  sess.Token,
		RefreshToken: sess.RefreshToken,
	}
	if err := saveSession(a.session); err != nil {
		log.Printf("could not cache session: %s", err.Error())
	}
	fmt.Println("Success!")
}

func (a *App) Register(ctx context.Context) {
	req := RegisterRequest{}

	var err error
	if req.Username, err = GetSimpleText(a.reader, "Enter user name", os.Stdout); err != nil {
		fmt.Println(err.Error())
		return
	}
	if req.FirstName, err = GetSimpleText(a.reader, "Enter first name", os.Stdout); err != nil {
		fmt.Println(err.Error())
		return
	}
	if req.LastName, err = GetSimpleText(a.reader, "Enter last name", os.Stdout); err != nil {
		fmt.Println(err.Error())
		return
	}
	if req.Email, err = GetSimpleText(a.reader, "Enter email", os.Stdout); err != nil {
		fmt.Println(err.Error())
		return
	}

	password, err := GetPassword(os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return
	}
	defer common.WipeByteArray(password)
	req.Password = string(password)

	if err := a.client.Register(ctx, req); err != nil {
		fmt.Println(err.Error())
		return
	}
	fmt.Println("Success!")
}

func (a *App) Availability(ctx context.Context) {
	username, err := GetSimpleText(a.reader, "Enter user name to check", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return
	}

	free, err := a.client.Available(ctx, username)
	if err != nil {
		fmt.Println(err.Error())
		return
	}
	if free {
		fmt.Println("Available!")
	} else {
		fmt.Println("Already taken.")
	}
}

func (a *App) Refresh(ctx context.Context) {
	if !a.isLoggedIn() {
		fmt.Println("Log in first.")
		return
	}

	access, err := a.client.Refresh(ctx, a.session.RefreshToken)
	if err != nil {
		fmt.Println(err.Error())
		return
	}

	a.session.AccessToken = access
	if err := saveSession(a.session); err != nil {
		log.Printf("could not cache session: %s", err.Error())
	}
	fmt.Println("Access token renewed.")
}

func (a *App) UploadAvatar(ctx context.Context, path string) {
	if !a.isLoggedIn() {
		fmt.Println("Log in first.")
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		fmt.Println(err.Error())
		return
	}

	key, url, err := a.client.RequestAvatarUpload(ctx, a.session.UserID, a.session.AccessToken)
	if err != nil {
		fmt.Println(err.Error())
		return
	}

	if err := netx.UploadPresigned(ctx, url, file); err != nil {
		fmt.Println(err.Error())
		return
	}
	fmt.Printf("Uploaded as %s\n", key)
}

func (a *App) WhoAmI() {
	if !a.isLoggedIn() {
		fmt.Println("Not logged in.")
		return
	}
	fmt.Printf("%s (%s)\n", a.session.FirstName, a.session.UserID)
}

func (a *App) Logout() {
	a.session = nil
	if err := clearSession(); err != nil {
		log.Printf("could not clear session: %s", err.Error())
	}
	fmt.Println("Logged out.")
}
