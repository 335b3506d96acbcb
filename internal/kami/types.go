package kami

// KamiInterface is the subset of the Kami gateway used by the validator.
type KamiInterface interface {
	GetMetagraph(netuid int) (SubnetMetagraphResponse, error)
	GetLatestBlock() (LatestBlockResponse, error)
	GetSubnetHyperparams(netuid int) (SubnetHyperparamsResponse, error)
	SetWeights(params SetWeightsParams) (ExtrinsicHashResponse, error)
	SignMessage(params SignMessageParams) (SignMessageResponse, error)
	VerifyMessage(params VerifyMessageParams) (VerifyMessageResponse, error)
	GetKeyringPair() (KeyringPairInfoResponse, error)
}

type SubtensorResponse[T any] struct {
	StatusCode int            `json:"statusCode"`
	Success    bool           `json:"success"`
	Data       T              `json:"data"`
	Error      map[string]any `json:"error"`
}

type (
	SubnetMetagraphResponse   = SubtensorResponse[SubnetMetagraph]
	LatestBlockResponse       = SubtensorResponse[LatestBlock]
	KeyringPairInfoResponse   = SubtensorResponse[KeyringPairInfo]
	SubnetHyperparamsResponse = SubtensorResponse[SubnetHyperparams]
	SignMessageResponse       = SubtensorResponse[SignMessage]
	VerifyMessageResponse     = SubtensorResponse[VerifyMessage]
	ExtrinsicHashResponse     = SubtensorResponse[string]
)

type SubnetMetagraph struct {
	Netuid              int        `json:"netuid"`
	Name                string     `json:"name"`
	Block               int        `json:"block"`
	Tempo               int        `json:"tempo"`
	WeightsVersion      int        `json:"weightsVersion"`
	WeightsRateLimit    int        `json:"weightsRateLimit"`
	MaxValidators       int        `json:"maxValidators"`
	NumUids             int        `json:"numUids"`
	MaxUids             int        `json:"maxUids"`
	RegistrationAllowed bool       `json:"registrationAllowed"`
	ImmunityPeriod      int        `json:"immunityPeriod"`
	Hotkeys             []string   `json:"hotkeys"`
	Coldkeys            []string   `json:"coldkeys"`
	Axons               []AxonInfo `json:"axons"`
	Active              []bool     `json:"active"`
	LastUpdate          []int      `json:"lastUpdate"`
	AlphaStake          []float64  `json:"alphaStake"`
	TaoStake            []float64  `json:"taoStake"`
	TotalStake          []float64  `json:"totalStake"`
}

type AxonInfo struct {
	Block    int    `json:"block"`
	Version  int    `json:"version"`
	IP       string `json:"ip"`
	Port     int    `json:"port"`
	IPType   int    `json:"ipType"`
	Protocol int    `json:"protocol"`
}

type LatestBlock struct {
	ParentHash     string `json:"parentHash"`
	BlockNumber    int    `json:"blockNumber"`
	StateRoot      string `json:"stateRoot"`
	ExtrinsicsRoot string `json:"extrinsicsRoot"`
}

type KeyringPair struct {
	Address   string                 `json:"address"`
	IsLocked  bool                   `json:"isLocked"`
	Meta      map[string]interface{} `json:"meta"`
	PublicKey map[string]interface{} `json:"publicKey"`
	Type      string                 `json:"type"`
}

type KeyringPairInfo struct {
	KeyringPair   KeyringPair `json:"keyringPair"`
	WalletColdkey string      `json:"walletColdkey"`
}

type SubnetHyperparams struct {
	ImmunityPeriod        int  `json:"immunityPeriod"`
	Tempo                 int  `json:"tempo"`
	WeightsVersion        int  `json:"weightsVersion"`
	WeightsRateLimit      int  `json:"weightsRateLimit"`
	RegistrationAllowed   bool `json:"registrationAllowed"`
	TargetRegsPerInterval int  `json:"targetRegsPerInterval"`
	MaxRegsPerBlock       int  `json:"maxRegsPerBlock"`
	MaxValidators         int  `json:"maxValidators"`
}

type SetWeightsParams struct {
	Netuid     int   `json:"netuid"`
	Dests      []int `json:"dests"`
	Weights    []int `json:"weights"`
	VersionKey int   `json:"versionKey"`
}

type SignMessageParams struct {
	Message string `json:"message"`
}

type SignMessage struct {
	Signature string `json:"signature"`
}

type VerifyMessageParams struct {
	Message       string `json:"message"`
	Signature     string `json:"signature"`
	SigneeAddress string `json:"signeeAddress"`
}

type VerifyMessage struct {
	Valid bool `json:"valid"`
}
