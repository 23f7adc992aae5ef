package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tallyhq/tally/internal/id"
	"github.com/tallyhq/tally/internal/model"
)

func newRulesCommand(g *globalOptions) *cobra.Command {
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage and apply categorization rules",
	}
	rulesCmd.AddCommand(
		newRulesListCommand(g),
		newRulesApplyCommand(g),
		newRulesAddCommand(g),
		newRulesRemoveCommand(g),
	)
	return rulesCmd
}

func newRulesListCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List rules in the order they apply",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd, g)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			rules := p.ledger.State().Rules
			if len(rules) == 0 {
				fmt.Fprintln(out, "No rules.")
				return nil
			}
			for _, r := range rules {
				printRule(out, r)
			}
			return nil
		},
	}
}

func newRulesApplyCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Run every rule over every transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd, g)
			if err != nil {
				return err
			}
			n := p.ledger.ApplyRules()
			fmt.Fprintf(cmd.OutOrStdout(), "%d transactions changed\n", n)
			return p.finish(cmd, "rules: apply")
		},
	}
}

func newRulesAddCommand(g *globalOptions) *cobra.Command {
	var (
		name     string
		when     []string
		matchAny bool
		rule     model.Rule
		tagIDs   []string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a rule",
		Long: `Add a rule. Each --when is FIELD:OPERATOR:VALUE, for example
  --when description:contains:shell --when amount:greater_than:20
Use metadata.KEY as the field to test one source column.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logic := model.LogicAnd
			if matchAny {
				logic = model.LogicOr
			}
			conds, err := parseConditions(when, logic)
			if err != nil {
				return err
			}
			rule.Name = name
			rule.Conditions = conds
			rule.AssignTagIDs = tagIDs

			p, err := openProject(cmd, g)
			if err != nil {
				return err
			}
			added := p.ledger.AddRule(rule)
			printRule(cmd.OutOrStdout(), added)
			return p.finish(cmd, "rules: add "+name)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "rule name")
	cmd.Flags().StringArrayVar(&when, "when", nil, "condition FIELD:OPERATOR:VALUE (repeatable)")
	cmd.Flags().BoolVar(&matchAny, "any", false, "match when any condition holds instead of all")
	cmd.Flags().StringVar(&rule.SetCategoryID, "category", "", "category id to set")
	cmd.Flags().StringVar(&rule.SetTransactionTypeID, "type", "", "transaction type id to set")
	cmd.Flags().StringVar(&rule.SetPayeeID, "payee", "", "payee id to set")
	cmd.Flags().StringVar(&rule.SetDescription, "description", "", "description to set")
	cmd.Flags().StringSliceVar(&tagIDs, "tag", nil, "tag ids to add")
	_ = cmd.MarkFlagRequired("when")
	return cmd
}

func newRulesRemoveCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove ID",
		Short: "Remove a rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd, g)
			if err != nil {
				return err
			}
			ids := make([]string, len(p.ledger.State().Rules))
			for i, r := range p.ledger.State().Rules {
				ids[i] = r.ID
			}
			ruleID, err := id.Resolve(ids, args[0])
			if err != nil {
				return err
			}
			if err := p.ledger.RemoveRule(ruleID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed rule %s\n", id.Short(ruleID))
			return p.finish(cmd, "rules: remove "+id.Short(ruleID))
		},
	}
}

// parseConditions turns FIELD:OPERATOR:VALUE strings into basic conditions
// joined by logic.
func parseConditions(specs []string, logic model.Logic) (model.Conditions, error) {
	conds := make(model.Conditions, 0, len(specs))
	for _, s := range specs {
		parts := strings.SplitN(s, ":", 3)
		if len(parts) < 2 {
			return nil, fmt.Errorf("invalid condition %q: want FIELD:OPERATOR:VALUE", s)
		}
		c := model.Basic{
			Field:    strings.TrimSpace(parts[0]),
			Operator: strings.TrimSpace(parts[1]),
			Next:     logic,
		}
		if len(parts) == 3 {
			c.Value = parts[2]
		}
		if key, ok := strings.CutPrefix(c.Field, "metadata."); ok {
			c.Field = model.FieldMetadata
			c.MetadataKey = key
		}
		if !validField(c.Field) {
			return nil, fmt.Errorf("unknown condition field %q", c.Field)
		}
		if !validOperator(c.Operator) {
			return nil, fmt.Errorf("unknown condition operator %q", c.Operator)
		}
		conds = append(conds, c)
	}
	return conds, nil
}

func validField(f string) bool {
	switch f {
	case model.FieldDescription, model.FieldMetadata, model.FieldPayeeID, model.FieldMerchantID,
		model.FieldLocationID, model.FieldAmount, model.FieldAccountID:
		return true
	}
	return false
}

func validOperator(op string) bool {
	switch op {
	case model.OpContains, model.OpDoesNotContain, model.OpStartsWith, model.OpEndsWith, model.OpEquals,
		model.OpRegexMatch, model.OpExists, model.OpGreaterThan, model.OpLessThan:
		return true
	}
	return false
}

func printRule(w io.Writer, r model.Rule) {
	name := r.Name
	if name == "" {
		name = "(unnamed)"
	}
	fmt.Fprintf(w, "%s  %s\n", id.Short(r.ID), name)
	fmt.Fprintf(w, "    when %s\n", describeConditions(r.Conditions))
	if actions := describeActions(r); actions != "" {
		fmt.Fprintf(w, "    then %s\n", actions)
	}
}

// describeConditions renders a condition list the way it is evaluated.
func describeConditions(cs model.Conditions) string {
	var b strings.Builder
	for i, c := range cs {
		if i > 0 {
			fmt.Fprintf(&b, " %s ", cs[i-1].NextLogic())
		}
		switch v := c.(type) {
		case model.Basic:
			field := v.Field
			if v.MetadataKey != "" {
				field += "." + v.MetadataKey
			}
			if v.Operator == model.OpExists {
				fmt.Fprintf(&b, "%s exists", field)
			} else {
				fmt.Fprintf(&b, "%s %s %q", field, v.Operator, v.Value)
			}
		case model.Group:
			fmt.Fprintf(&b, "(%s)", describeConditions(v.Conditions))
		}
	}
	if b.Len() == 0 {
		return "(never)"
	}
	return b.String()
}

func describeActions(r model.Rule) string {
	var parts []string
	add := func(label, v string) {
		if v != "" {
			parts = append(parts, label+"="+v)
		}
	}
	add("category", r.SetCategoryID)
	add("type", r.SetTransactionTypeID)
	add("payee", r.SetPayeeID)
	add("merchant", r.SetMerchantID)
	add("location", r.SetLocationID)
	add("user", r.SetUserID)
	add("description", r.SetDescription)
	if len(r.AssignTagIDs) > 0 {
		parts = append(parts, "tags+="+strings.Join(r.AssignTagIDs, ","))
	}
	return strings.Join(parts, ", ")
}
