package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokengate/pkg/domain"
	domainerrors "tokengate/pkg/domain-errors"
)

const (
	alice = domain.Address("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	bob   = domain.Address("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name       string
		in         Input
		wantCode   domainerrors.Code
		wantReason string
	}{
		{
			name: "allows ordinary transfer between whitelisted accounts",
			in: Input{
				From: alice, To: bob,
				WhitelistingEnabled: true,
				FromWhitelisted:     true,
				ToWhitelisted:       true,
			},
		},
		{
			name: "allows any transfer when whitelisting is disabled",
			in:   Input{From: alice, To: bob},
		},
		{
			name: "pause denies everything regardless of other state",
			in: Input{
				From: alice, To: bob,
				Paused:          true,
				FromWhitelisted: true,
				ToWhitelisted:   true,
			},
			wantCode:   domainerrors.CodePaused,
			wantReason: ReasonPaused,
		},
		{
			name: "pause denies mint",
			in: Input{
				From: domain.ZeroAddress, To: bob,
				Paused: true,
			},
			wantCode:   domainerrors.CodePaused,
			wantReason: ReasonPaused,
		},
		{
			name: "sender blacklist checked before recipient blacklist",
			in: Input{
				From: alice, To: bob,
				FromBlacklisted: true,
				ToBlacklisted:   true,
			},
			wantCode:   domainerrors.CodeAccountBlacklisted,
			wantReason: ReasonSenderBlacklisted,
		},
		{
			name: "blacklisted recipient denied",
			in: Input{
				From: alice, To: bob,
				ToBlacklisted: true,
			},
			wantCode:   domainerrors.CodeAccountBlacklisted,
			wantReason: ReasonRecipientBlacklisted,
		},
		{
			name: "blacklist applies even when whitelisting is enabled and account is whitelisted",
			in: Input{
				From: alice, To: bob,
				WhitelistingEnabled: true,
				FromWhitelisted:     true,
				FromBlacklisted:     true,
				ToWhitelisted:       true,
			},
			wantCode:   domainerrors.CodeAccountBlacklisted,
			wantReason: ReasonSenderBlacklisted,
		},
		{
			name: "blacklisted recipient blocks mint",
			in: Input{
				From: domain.ZeroAddress, To: bob,
				ToBlacklisted: true,
			},
			wantCode:   domainerrors.CodeAccountBlacklisted,
			wantReason: ReasonRecipientBlacklisted,
		},
		{
			name: "non-whitelisted sender denied",
			in: Input{
				From: alice, To: bob,
				WhitelistingEnabled: true,
				ToWhitelisted:       true,
			},
			wantCode:   domainerrors.CodeSenderNotWhitelisted,
			wantReason: ReasonSenderNotWhitelisted,
		},
		{
			name: "non-whitelisted recipient denied",
			in: Input{
				From: alice, To: bob,
				WhitelistingEnabled: true,
				FromWhitelisted:     true,
			},
			wantCode:   domainerrors.CodeRecipientNotWhitelisted,
			wantReason: ReasonRecipientNotWhitelisted,
		},
		{
			name: "mint bypasses whitelist checks",
			in: Input{
				From: domain.ZeroAddress, To: bob,
				WhitelistingEnabled: true,
			},
		},
		{
			name: "burn bypasses whitelist checks",
			in: Input{
				From: alice, To: domain.ZeroAddress,
				WhitelistingEnabled: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Decide(tt.in)

			if tt.wantCode == "" {
				require.NoError(t, err)
				assert.Empty(t, DenyReason(tt.in, err))
				return
			}
			require.Error(t, err)
			assert.True(t, domainerrors.HasCode(err, tt.wantCode), "got %v", err)
			assert.Equal(t, tt.wantReason, DenyReason(tt.in, err))
		})
	}
}
