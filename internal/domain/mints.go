package domain

// Well-known mint addresses.
const (
	USDCMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	USDTMint = "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"
	WSOLMint = "So11111111111111111111111111111111111111112"
)

// StablecoinMints are the mints counted into TotalStables.
var StablecoinMints = map[string]bool{
	USDCMint: true,
	USDTMint: true,
}

// MandatoryMints returns the set of mints that are always retained during
// holding filtering and excluded from TotalSPL: the stablecoins, wrapped SOL,
// and the tracked mint itself.
func MandatoryMints(trackedMint string) map[string]bool {
	m := map[string]bool{
		USDCMint: true,
		USDTMint: true,
		WSOLMint: true,
	}
	if trackedMint != "" {
		m[trackedMint] = true
	}
	return m
}
