package aggregates

import "testing"

type stubAggregate struct{ c Contract }

func (s stubAggregate) Contract() Contract { return s.c }

func TestValidateContracts(t *testing.T) {
	ok := []Aggregate{
		stubAggregate{TaskAggregateContract},
		stubAggregate{ScheduleAggregateContract},
		stubAggregate{ExtensionAggregateContract},
	}
	if err := ValidateContracts(ok...); err != nil {
		t.Fatalf("ValidateContracts: want=nil got=%v", err)
	}

	bad := []Contract{
		{Owns: "tasks", WriteTxOwnership: WriteTxOwnedByAggregate, ReadPolicy: ReadPolicyInvariantScoped},
		{Name: "no_table", WriteTxOwnership: WriteTxOwnedByAggregate, ReadPolicy: ReadPolicyInvariantScoped},
		{Name: "caller_owned", Owns: "tasks", ReadPolicy: ReadPolicyInvariantScoped},
		{Name: "no_policy", Owns: "tasks", WriteTxOwnership: WriteTxOwnedByAggregate},
	}
	for _, c := range bad {
		if err := ValidateContracts(stubAggregate{c}); err == nil {
			t.Fatalf("ValidateContracts(%+v): want error got=nil", c)
		}
	}
	dup := ScheduleAggregateContract
	dup.Name = "Tasks.ShadowSchedule"
	if err := ValidateContracts(stubAggregate{ScheduleAggregateContract}, stubAggregate{dup}); err == nil {
		t.Fatalf("two owners of task_schedule: want error got=nil")
	}
	if err := ValidateContracts(nil); err == nil {
		t.Fatalf("ValidateContracts(nil): want error got=nil")
	}
}
