package intake_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/vnb-store/internal/intake"
	"github.com/MikeMC777/vnb-store/internal/logx"
	"github.com/MikeMC777/vnb-store/internal/memstore"
	"github.com/MikeMC777/vnb-store/internal/notify"
)

func TestSubscribeThreePaths(t *testing.T) {
	st := memstore.New()
	repo := st.Intake()
	svc := intake.NewService(repo, nil, logx.Nop())
	ctx := context.Background()

	res, err := svc.Subscribe(ctx, intake.NewsletterRequest{Email: "ana@example.com"})
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, intake.MsgSubscribed, res.Message)

	res, err = svc.Subscribe(ctx, intake.NewsletterRequest{Email: "ANA@example.com"})
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, intake.MsgAlready, res.Message)

	sub, err := repo.GetSubscription(ctx, "ana@example.com")
	require.NoError(t, err)
	sub.IsActive = false
	require.NoError(t, repo.SaveSubscription(ctx, sub))

	res, err = svc.Subscribe(ctx, intake.NewsletterRequest{Email: "ana@example.com"})
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, intake.MsgResubscribed, res.Message)
	assert.True(t, res.Subscription.IsActive)
}

func TestContactAndInvestmentPublishEvents(t *testing.T) {
	st := memstore.New()
	mem := &notify.Memory{}
	disp := notify.NewDispatcher(mem, logx.Nop())
	svc := intake.NewService(st.Intake(), disp, logx.Nop())
	ctx := context.Background()

	m, err := svc.Contact(ctx, intake.ContactRequest{
		Name: " Ana ", Email: "ana@example.com", Subject: "Wholesale", Message: "Do you ship to Canada?",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, "Ana", m.Name)

	q, err := svc.Invest(ctx, intake.InvestmentRequest{
		Name: "Ben", Email: "ben@example.com", Phone: "555-0199", Tier: intake.TierGrowth,
	})
	require.NoError(t, err)
	assert.Equal(t, intake.TierGrowth, q.Tier)

	require.NoError(t, disp.Close())
	assert.Len(t, mem.OfType(notify.TypeContact), 1)
	assert.Len(t, mem.OfType(notify.TypeInvestment), 1)
	assert.Len(t, st.Intake().Contacts(), 1)
	assert.Len(t, st.Intake().Inquiries(), 1)
}
