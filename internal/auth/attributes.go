package auth

// NewOAuthAttributes maps a provider account object to canonical attributes.
// It is a pure function: no I/O, and the only failure is an account without
// a consented email, which provisioning cannot proceed without.
//
// The display name prefers the consented kakao_account profile nickname and
// falls back to the legacy properties nickname; when the provider supplied
// neither it stays empty rather than being invented.
func NewOAuthAttributes(account Account) (OAuthAttributes, error) {
	if account.KakaoAccount.Email == nil {
		return OAuthAttributes{}, &MissingAttributeError{Field: "email"}
	}

	attrs := OAuthAttributes{
		Email:      *account.KakaoAccount.Email,
		ProviderID: account.ID,
	}

	if nickname := account.KakaoAccount.Profile.Nickname; nickname != nil {
		attrs.DisplayName = *nickname
	} else if nickname, ok := account.Properties["nickname"]; ok {
		attrs.DisplayName = nickname
	}

	return attrs, nil
}
