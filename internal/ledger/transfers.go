package ledger

import (
	"context"

	"github.com/tallyhq/tally/internal/reconcile"
)

// ProposeTransfers suggests link groups among unlinked transactions.
func (s *Service) ProposeTransfers(ctx context.Context) ([]reconcile.Proposal, error) {
	props, err := reconcile.ProposeTransfers(ctx, s.state.Transactions, s.isTransferType, s.opts.Transfers)
	if err != nil {
		return nil, err
	}
	s.log.Debug().Int("proposals", len(props)).Msg("transfer detection")
	return props, nil
}

// AcceptProposal links a proposal's transactions as one transfer group.
func (s *Service) AcceptProposal(p reconcile.Proposal) (string, error) {
	return s.LinkTransfer(p.IDs(), "")
}

// UnbalancedGroups returns the link groups whose sides do not match.
func (s *Service) UnbalancedGroups() []reconcile.GroupAudit {
	var bad []reconcile.GroupAudit
	for _, a := range reconcile.AuditLinkGroups(s.state.Transactions, s.opts.Transfers.EffectiveTolerance()) {
		if !a.Balanced {
			bad = append(bad, a)
		}
	}
	return bad
}
