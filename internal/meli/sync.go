package meli

import (
	"context"
	"strconv"
	"strings"

	domain "github.com/vieirasantos/meli-seller-hub/pkg/types"
)

// lastSyncLayout is the display format stored on Account.LastSync.
const lastSyncLayout = "02/01/2006 15:04:05"

// reputationRule pairs a predicate over the provider reputation block with
// the score it grants. Rules are evaluated top-down; the first match wins.
// The scores are business policy, not a computed formula.
type reputationRule struct {
	name    string
	applies func(rep *SellerReputation) bool
	score   int
}

var reputationTable = []reputationRule{
	{
		name: "power seller",
		applies: func(rep *SellerReputation) bool {
			return rep != nil && rep.PowerSellerStatus != ""
		},
		score: 95,
	},
	{
		name:    "level 5",
		applies: levelPrefix("5"),
		score:   90,
	},
	{
		name:    "level 4",
		applies: levelPrefix("4"),
		score:   85,
	},
	{
		name:    "level 3",
		applies: levelPrefix("3"),
		score:   80,
	},
	{
		name: "any other level",
		applies: func(rep *SellerReputation) bool {
			return rep != nil && rep.LevelID != ""
		},
		score: 75,
	},
	{
		name: "no reputation data",
		applies: func(_ *SellerReputation) bool {
			return true
		},
		score: 70,
	},
}

func levelPrefix(digit string) func(rep *SellerReputation) bool {
	return func(rep *SellerReputation) bool {
		return rep != nil && strings.HasPrefix(rep.LevelID, digit+"_")
	}
}

// reputationScore maps the provider reputation block to a 0-100 score via
// the policy table. The table always matches: the last rule is a catch-all.
func reputationScore(rep *SellerReputation) int {
	for _, rule := range reputationTable {
		if rule.applies(rep) {
			return rule.score
		}
	}
	return 0
}

// SyncAccount runs the synchronization pipeline for account: the profile
// fetch is mandatory and its failure aborts the sync returning the input
// account untouched; products and stats are best-effort enrichment whose
// failures only mark the corresponding part degraded, leaving prior
// counters in place.
func (c *Client) SyncAccount(ctx context.Context, account domain.Account) Outcome[SyncResult] {
	report := SyncReport{
		Profile:  PartResult{Status: domain.SyncPartOK},
		Products: PartResult{Status: domain.SyncPartSkipped},
		Stats:    PartResult{Status: domain.SyncPartSkipped},
	}

	profile := c.GetUserInfo(ctx)
	if !profile.Success {
		report.Profile = PartResult{Status: domain.SyncPartFailed, Reason: profile.Error}
		return fail(SyncResult{Account: account, Report: report}, profile.Error)
	}

	sellerID := strconv.FormatInt(profile.Data.ID, 10)

	updated := account
	if profile.Data.Nickname != "" {
		updated.Nickname = profile.Data.Nickname
	}
	if profile.Data.Email != "" {
		updated.Email = profile.Data.Email
	}
	updated.UserID = profile.Data.ID
	updated.Reputation = reputationScore(profile.Data.SellerReputation)
	updated.Status = domain.AccountActive
	updated.LastSync = c.nowFunc().Format(lastSyncLayout)

	var products []domain.Product
	prodOutcome := c.GetProducts(ctx, sellerID)
	if prodOutcome.Success {
		products = prodOutcome.Data
		updated.Products = len(products)
		report.Products = PartResult{Status: domain.SyncPartOK}
	} else {
		// Counter keeps its prior value; the failure never aborts the sync.
		report.Products = PartResult{Status: domain.SyncPartDegraded, Reason: prodOutcome.Error}
	}

	statsOutcome := c.GetSalesStats(ctx, sellerID)
	if statsOutcome.Success {
		switch {
		case statsOutcome.Data.PeriodSales > 0:
			updated.Sales = statsOutcome.Data.PeriodSales
			report.Stats = PartResult{Status: domain.SyncPartOK}
		case statsOutcome.Data.TotalSales > 0:
			updated.Sales = statsOutcome.Data.TotalSales
			report.Stats = PartResult{Status: domain.SyncPartOK}
		default:
			// Zeroed counters usually mean the metrics endpoint degraded
			// to defaults; keep the prior value.
			report.Stats = PartResult{
				Status: domain.SyncPartDegraded,
				Reason: "métricas indisponíveis; mantido valor anterior",
			}
		}
	} else {
		report.Stats = PartResult{Status: domain.SyncPartDegraded, Reason: statsOutcome.Error}
	}

	return ok(SyncResult{Account: updated, Products: products, Report: report})
}
