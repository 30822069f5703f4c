package switchboard_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/botarmy/switchboard"
	"github.com/botarmy/switchboard/pkg/domain"
	"github.com/botarmy/switchboard/pkg/ports"
)

func Example() {
	// Print every render with its options instead of sending it anywhere.
	transport := ports.TransportFunc(func(_ context.Context, party string, r domain.Render) error {
		if strings.HasPrefix(r.Text, "Hi there.") {
			return nil
		}
		fmt.Printf("[%s] %s\n", r.Mode, r.Text)
		for _, row := range r.Options {
			for _, o := range row {
				fmt.Printf("  (%s) %s\n", o.Value, o.Label)
			}
		}
		return nil
	})

	bot, err := switchboard.New(switchboard.WithTransport(transport))
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	_, _ = bot.Handle(ctx, domain.Update{Party: "42", Text: "/start"})
	res, _ := bot.Handle(ctx, domain.Update{Party: "42", CallbackData: "EMERGENCY"})
	fmt.Println("ended:", res.Ended)

	// Output:
	// [new] Please confirm the main reason for making contact?
	//   (GENERAL) GENERAL
	//   (EMERGENCY) EMERGENCY
	//   (END) Exit
	// [replace] Okay, for an EMERGENCY click on the below link:
	//  -> @LAIOCommunityCBCEmergencyBot
	// ended: true
}
