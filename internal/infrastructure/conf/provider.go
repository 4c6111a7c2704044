package conf

import (
	txconfig "github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/google/wire"
)

// ProviderSet exposes configuration-derived dependencies for Wire graphs.
var ProviderSet = wire.NewSet(
	ProvideBootstrap,
	ProvideServiceMetadata,
	ProvideServerConfig,
	ProvideDataConfig,
	ProvideProviderConfig,
	ProvidePubSubConfig,
	ProvideOutboxConfig,
	ProvideTxConfig,
)

// ProvideBootstrap exposes the strongly typed bootstrap configuration.
func ProvideBootstrap(b *Bundle) *Bootstrap {
	if b == nil {
		return nil
	}
	return b.Bootstrap
}

// ProvideServiceMetadata returns the resolved ServiceMetadata from the bundle.
func ProvideServiceMetadata(b *Bundle) ServiceMetadata {
	if b == nil {
		return ServiceMetadata{}
	}
	return b.Service
}

// ProvideServerConfig returns the server section of the bootstrap configuration.
func ProvideServerConfig(bc *Bootstrap) *Server {
	if bc == nil {
		return nil
	}
	return bc.Server
}

// ProvideDataConfig returns the data section of the bootstrap configuration.
func ProvideDataConfig(bc *Bootstrap) *Data {
	if bc == nil {
		return nil
	}
	return bc.Data
}

// ProvideProviderConfig returns the video provider section of the bootstrap configuration.
func ProvideProviderConfig(bc *Bootstrap) *Provider {
	if bc == nil {
		return nil
	}
	return bc.Provider
}

// ProvidePubSubConfig returns the pubsub section of the bootstrap configuration.
func ProvidePubSubConfig(bc *Bootstrap) *PubSub {
	if bc == nil {
		return nil
	}
	return bc.PubSub
}

// ProvideOutboxConfig returns the outbox section of the bootstrap configuration.
func ProvideOutboxConfig(bc *Bootstrap) *Outbox {
	if bc == nil {
		return nil
	}
	return bc.Outbox
}

// ProvideTxConfig exposes the transaction manager configuration.
func ProvideTxConfig(b *Bundle) txconfig.Config {
	if b == nil {
		return txconfig.Config{}
	}
	return b.TxConfig
}
