package common

type Cluster string

const (
	DEVNET       Cluster = "devnet"
	TESTNET      Cluster = "testnet"
	MAINNET_BETA Cluster = "mainnet-beta"
	LOCALNET     Cluster = "localnet"
)

// 默认版税 5%
const DEFAULT_SELLER_FEE_BASIS_POINTS = 500

const (
	DEFAULT_FILEBASE_ENDPOINT = "https://s3.filebase.com"
	DEFAULT_FILEBASE_REGION   = "us-east-1"
	DEFAULT_FILEBASE_GATEWAY  = "ipfs.filebase.io"
)

const (
	NFT_DESCRIPTION = "A Solana NFT created with Filebase IPFS storage"
	NFT_IMAGE_TYPE  = "image/jpeg"
)

// 浏览器地址
const EXPLORER_ADDRESS_URL = "https://explorer.solana.com/address/%s?cluster=%s"
