package aggregates

import "fmt"

type WriteTxOwnership string

// WriteTxOwnedByAggregate: write methods open and commit their own
// transaction. Callers never pass one in.
const WriteTxOwnedByAggregate WriteTxOwnership = "aggregate_owned"

// ReadPolicy says which reads an aggregate may serve.
type ReadPolicy string

const (
	// ReadPolicyInvariantScoped limits reads to what a write decision needs.
	ReadPolicyInvariantScoped ReadPolicy = "invariant_scoped_reads"
	// ReadPolicyTableRepoQueries leaves listing queries to the table repos.
	ReadPolicyTableRepoQueries ReadPolicy = "table_repo_queries"
)

// Contract is the policy an aggregate declares about itself. Owns names
// the table whose state machine it is the only writer of.
type Contract struct {
	Name             string
	Owns             string
	WriteTxOwnership WriteTxOwnership
	ReadPolicy       ReadPolicy
	Notes            string
}

type Aggregate interface {
	Contract() Contract
}

func (c Contract) RequiresAggregateOwnedTx() bool {
	return c.WriteTxOwnership == WriteTxOwnedByAggregate
}

// ValidateContracts checks the aggregates wired into one process: each
// contract is complete, owns its transactions, and no two claim the same
// table.
func ValidateContracts(aggs ...Aggregate) error {
	owners := map[string]string{}
	for _, a := range aggs {
		if a == nil {
			return fmt.Errorf("nil aggregate")
		}
		c := a.Contract()
		switch {
		case c.Name == "":
			return fmt.Errorf("aggregate %T: contract has no name", a)
		case c.Owns == "":
			return fmt.Errorf("%s: contract owns no table", c.Name)
		case !c.RequiresAggregateOwnedTx():
			return fmt.Errorf("%s: write transactions must be aggregate owned", c.Name)
		case c.ReadPolicy == "":
			return fmt.Errorf("%s: missing read policy", c.Name)
		}
		if prev, dup := owners[c.Owns]; dup {
			return fmt.Errorf("%s and %s both own %s", prev, c.Name, c.Owns)
		}
		owners[c.Owns] = c.Name
	}
	return nil
}
