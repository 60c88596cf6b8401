package domain

const (
	// Blockchain constants
	ETHEREUM_ZERO_ADDRESS = "0x0000000000000000000000000000000000000000"

	// DEFAULT_PAGE_SIZE is the number of blocks (EVM) or events (object chain) fetched per page
	DEFAULT_PAGE_SIZE = 500

	// DEFAULT_SAFETY_WINDOW is how far behind head a fresh projector starts backfilling
	DEFAULT_SAFETY_WINDOW = 5000
)
