package git

import "testing"

func TestCommitMessage_String(t *testing.T) {
	tests := []struct {
		name string
		msg  *CommitMessage
		want string
	}{
		{"no scope", NewCommitMessage(CommitTypeFeat, "add app x with envs (dev prod)"), "feat: add app x with envs (dev prod)"},
		{"scope", NewCommitMessage(CommitTypeFeat, "configure x (dev)").WithScope("addons"), "feat(addons): configure x (dev)"},
		{"chore", NewCommitMessage(CommitTypeChore, "update app config for x"), "chore: update app config for x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.msg.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCommitMessage_Validate(t *testing.T) {
	tests := []struct {
		name    string
		msg     *CommitMessage
		wantErr bool
	}{
		{"valid", NewCommitMessage(CommitTypeFix, "handle empty registry"), false},
		{"missing type", &CommitMessage{Subject: "x"}, true},
		{"missing subject", &CommitMessage{Type: CommitTypeFeat}, true},
		{"multiline", NewCommitMessage(CommitTypeFeat, "one\ntwo"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
