package tickets

import (
	"context"
	"time"

	"github.com/JaimeStill/greenhouse/internal/runtime"
	"github.com/JaimeStill/greenhouse/pkg/helpdesk"
)

// Fetch returns tickets created after in.LastRunTime, or after now when it
// is unset, and the time to use as the next cursor.
func Fetch(ctx context.Context, rt *runtime.Runtime, in FetchInput) (FetchResponse, error) {
	client, err := helpdeskClient(rt, in)
	if err != nil {
		return FetchResponse{}, err
	}

	now := time.Now().UTC()
	since := now
	if in.LastRunTime != nil {
		since = *in.LastRunTime
	}

	found, err := client.SearchTickets(ctx, since)
	if err != nil {
		return FetchResponse{}, err
	}

	return FetchResponse{
		Tickets:     fromHelpdesk(found),
		LastRunTime: now,
	}, nil
}

func helpdeskClient(rt *runtime.Runtime, in FetchInput) (helpdesk.Client, error) {
	if in.ZendeskSubdomain != "" && in.ZendeskEmail != "" && in.ZendeskToken != "" {
		cfg := &helpdesk.Config{
			Subdomain: in.ZendeskSubdomain,
			Email:     in.ZendeskEmail,
			Token:     in.ZendeskToken,
		}
		if err := cfg.Finalize(nil); err != nil {
			return nil, err
		}
		return helpdesk.New(cfg, nil, rt.Logger())
	}
	return rt.Helpdesk(ConnectorHelpdesk)
}
