package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iudanet/thoughtbook/internal/client/auth"
	"github.com/iudanet/thoughtbook/internal/client/feedback"
	"github.com/iudanet/thoughtbook/internal/client/update"
	"github.com/iudanet/thoughtbook/internal/config"
	"github.com/iudanet/thoughtbook/internal/models"
	"github.com/iudanet/thoughtbook/pkg/api"
)

func (c *Cli) runUpgrade(ctx context.Context, args []string) error {
	if c.deps.License.IsPremium() {
		c.io.Println("You are already a premium user. Thank you!")
		return nil
	}

	email, err := c.deps.Emails.Get(ctx)
	if err != nil {
		return err
	}
	if email == "" {
		email, err = c.io.ReadInput("Email for the receipt: ")
		if err != nil {
			return fmt.Errorf("failed to read email: %w", err)
		}
	}

	c.io.Println("Contacting the payment server...")
	v, err := c.deps.Pool.Submit(ctx, "payment", func(ctx context.Context) (any, error) {
		return c.deps.Purchaser.Start(ctx, email)
	}).Wait(ctx)
	if err != nil {
		return fmt.Errorf("could not start payment: %w", err)
	}
	payment := v.(*api.PaymentData)

	if payment.AuthorizationURL != "" {
		c.io.Println("Complete the payment in your browser:")
		c.io.Printf("  %s\n", payment.AuthorizationURL)
	} else {
		c.io.Println("Payment created. Wait for the payment confirmation.")
	}

	answer, err := c.io.ReadInput("Press Enter when the payment is done (or type 'cancel'): ")
	if err != nil || strings.EqualFold(strings.TrimSpace(answer), "cancel") {
		c.io.Println("Payment not completed. Run 'upgrade' again when ready.")
		return nil
	}

	_, err = c.deps.Pool.Submit(ctx, "license", func(ctx context.Context) (any, error) {
		return nil, c.deps.Purchaser.Complete(ctx, payment.Reference, c.deps.DeviceID)
	}).Wait(ctx)
	if err != nil {
		return fmt.Errorf("license was not issued: %w", err)
	}

	c.io.Println("License activated successfully! You are now a premium user.")
	return nil
}

func (c *Cli) runActivate(ctx context.Context, args []string) error {
	data, err := c.io.ReadInput("License data: ")
	if err != nil {
		return fmt.Errorf("failed to read license data: %w", err)
	}
	key, err := c.io.ReadInput("License key: ")
	if err != nil {
		return fmt.Errorf("failed to read license key: %w", err)
	}

	if err := c.deps.License.Activate(ctx, strings.TrimSpace(data), strings.TrimSpace(key)); err != nil {
		c.io.Println("Invalid license. Please try again.")
		return nil
	}

	c.io.Println("License activated successfully! You are now a premium user.")
	return nil
}

func (c *Cli) runEmail(ctx context.Context, args []string) error {
	if len(args) == 0 {
		email, err := c.deps.Emails.Get(ctx)
		if err != nil {
			return err
		}
		if email == "" {
			c.io.Println("No email saved. Use 'email <address>' to set one.")
			return nil
		}
		c.io.Printf("Email: %s\n", email)
		return nil
	}

	if err := c.deps.Emails.Set(ctx, args[0]); err != nil {
		return err
	}
	c.io.Println("Email saved.")
	return nil
}

func (c *Cli) runFeedback(ctx context.Context, args []string) error {
	name, err := c.io.ReadInput("Your name (optional): ")
	if err != nil {
		return fmt.Errorf("failed to read name: %w", err)
	}

	stored, _ := c.deps.Emails.Get(ctx)
	prompt := "Email: "
	if stored != "" {
		prompt = fmt.Sprintf("Email [%s]: ", stored)
	}
	email, err := c.io.ReadInput(prompt)
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}
	if strings.TrimSpace(email) == "" {
		email = stored
	}

	c.io.Printf("Your feedback, finish with a line containing only %q:\n", BodyTerminator)
	var lines []string
	for {
		line, err := c.io.ReadInput("")
		if err != nil || line == BodyTerminator {
			break
		}
		lines = append(lines, line)
	}

	fb, err := c.deps.Feedback.Compose(name, email, strings.Join(lines, "\n"))
	if err != nil {
		return err
	}

	c.io.Println("Processing...")
	v, err := c.deps.Pool.Submit(ctx, "feedback", func(ctx context.Context) (any, error) {
		return c.deps.Feedback.Submit(ctx, fb)
	}).Wait(ctx)
	if err != nil {
		return err
	}

	if v.(feedback.Result) == feedback.Queued {
		c.io.Println("There's a problem on our end. Your feedback was saved and will be sent later.")
		return nil
	}
	c.io.Println("Thank you for your feedback!")
	return nil
}

func (c *Cli) runPassword(ctx context.Context, args []string) error {
	presence, err := c.deps.Auth.Check()
	if err != nil {
		return err
	}
	if presence == auth.Fresh {
		c.io.Println("No password is set. Use 'settings password on' to create one.")
		return nil
	}

	current, err := c.readSecret("Current password: ")
	if err != nil {
		return err
	}
	next, err := c.readSecret("New password: ")
	if err != nil {
		return err
	}
	confirm, err := c.readSecret("Confirm password: ")
	if err != nil {
		return err
	}
	if next != confirm {
		c.io.Println("Passwords do not match.")
		return nil
	}

	if err := c.deps.Auth.Change(current, next); err != nil {
		if errors.Is(err, auth.ErrWrongPassword) {
			c.io.Println("Incorrect password.")
			return nil
		}
		return err
	}

	c.io.Println("Password changed. Your recovery code is unchanged.")
	return nil
}

func (c *Cli) runSettings(ctx context.Context, args []string) error {
	if len(args) == 0 {
		st, err := c.deps.Settings.Load(ctx)
		if err != nil {
			return err
		}
		m, err := c.deps.Freemium.Metrics(ctx)
		if err != nil {
			return err
		}
		c.printSettings(st, m)
		return nil
	}

	if len(args) != 2 || args[0] != "password" {
		return fmt.Errorf("usage: settings [password on|off]")
	}

	switch strings.ToLower(args[1]) {
	case "on":
		presence, err := c.deps.Auth.Check()
		if err != nil {
			return err
		}
		if presence == auth.Fresh {
			outcome, err := c.deps.Gate.Setup(ctx)
			if err != nil {
				return err
			}
			switch outcome {
			case auth.OutcomeExit:
				return errExit
			case auth.OutcomeCancelled:
				c.io.Println("Password setup cancelled.")
				return nil
			}
		}
		if err := c.deps.Settings.SetRequestPassword(ctx, true); err != nil {
			return err
		}
		c.io.Println("Password will be requested at startup.")
	case "off":
		if err := c.deps.Settings.SetRequestPassword(ctx, false); err != nil {
			return err
		}
		c.io.Println("Password will not be requested at startup.")
	default:
		return fmt.Errorf("usage: settings [password on|off]")
	}
	return nil
}

func (c *Cli) printSettings(st models.Settings, m models.Metrics) {
	plan := "free"
	if c.deps.License.IsPremium() {
		plan = "premium"
	}
	c.io.Printf("Ask password at startup: %t\n", st.RequestPassword)
	c.io.Printf("Plan:                    %s\n", plan)
	c.io.Printf("Free note limit:         %d\n", m.NoteCountLimit)
	c.io.Printf("Version:                 %s\n", c.deps.Updates.CurrentVersion())
}

func (c *Cli) runUpdate(ctx context.Context, args []string) error {
	c.io.Println("Checking for updates...")
	v, err := c.deps.Pool.Submit(ctx, "update-check", func(ctx context.Context) (any, error) {
		rel, ok := c.deps.Updates.Check(ctx)
		if !ok {
			return (*update.Release)(nil), nil
		}
		return rel, nil
	}).Wait(ctx)
	if err != nil {
		return err
	}

	rel := v.(*update.Release)
	if rel == nil {
		c.io.Printf("%s is up to date (%s).\n", config.AppName, c.deps.Updates.CurrentVersion())
		return nil
	}

	c.io.Printf("Version %s is available.\n", rel.Version)
	if rel.Notes != "" {
		c.io.Println(rel.Notes)
	}
	c.io.Printf("Download: %s\n", rel.URL)
	return nil
}
