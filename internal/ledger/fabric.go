package ledger

import (
	"context"
	"crypto/x509"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/shubham4653/aurahealth101-sub000/internal/config"

	"github.com/hyperledger/fabric-gateway/pkg/client"
	"github.com/hyperledger/fabric-gateway/pkg/identity"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
)

// FabricGateway implements Gateway against a Hyperledger Fabric network. The
// process-wide signing credential is loaded once in Connect; every submission
// goes through the same identity.
type FabricGateway struct {
	conn     *grpc.ClientConn
	gw       *client.Gateway
	contract *client.Contract
}

// Connect dials the gateway peer and loads the backend's signing credential.
// Any missing or unreadable credential file fails here, before the first
// request is ever served.
func Connect(cfg config.LedgerConfig) (*FabricGateway, error) {
	conn, err := newGrpcConnection(cfg)
	if err != nil {
		return nil, wrapErr("connect", err)
	}

	id, err := newIdentity(cfg)
	if err != nil {
		conn.Close()
		return nil, wrapErr("load signing identity", err)
	}

	sign, err := newSign(cfg)
	if err != nil {
		conn.Close()
		return nil, wrapErr("load signing key", err)
	}

	gw, err := client.Connect(
		id,
		client.WithSign(sign),
		client.WithClientConnection(conn),
		// Default timeouts for different gRPC calls
		client.WithEvaluateTimeout(5*time.Second),
		client.WithEndorseTimeout(15*time.Second),
		client.WithSubmitTimeout(5*time.Second),
		client.WithCommitStatusTimeout(1*time.Minute),
	)
	if err != nil {
		conn.Close()
		return nil, wrapErr("connect gateway", err)
	}

	network := gw.GetNetwork(cfg.Channel)
	contract := network.GetContract(cfg.Chaincode)

	return &FabricGateway{
		conn:     conn,
		gw:       gw,
		contract: contract,
	}, nil
}

// Close releases the gateway and its gRPC connection.
func (g *FabricGateway) Close() error {
	g.gw.Close()
	return g.conn.Close()
}

// DeployRecordContract submits the record binding and blocks until the
// transaction is committed. The returned payload is the address of the
// per-record access-control contract.
func (g *FabricGateway) DeployRecordContract(ctx context.Context, recordID, ownerAddress, storagePointer string) (string, error) {
	result, err := g.contract.SubmitWithContext(ctx, "DeployRecord",
		client.WithArguments(recordID, ownerAddress, storagePointer))
	if err != nil {
		return "", wrapErr("deploy record contract", err)
	}

	address := strings.TrimSpace(string(result))
	if address == "" {
		return "", wrapErr("deploy record contract", fmt.Errorf("empty contract address in commit result"))
	}
	return address, nil
}

// InvokeAccess submits a grant or revoke and blocks until committed.
func (g *FabricGateway) InvokeAccess(ctx context.Context, contractAddress string, op ContractOp, providerAddress string) error {
	method, err := op.MethodName()
	if err != nil {
		return wrapErr("invoke access", err)
	}

	if _, err := g.contract.SubmitWithContext(ctx, method,
		client.WithArguments(contractAddress, providerAddress)); err != nil {
		return wrapErr(fmt.Sprintf("submit %s", method), err)
	}
	return nil
}

// CheckPermission evaluates the contract's permission query without
// submitting a transaction.
func (g *FabricGateway) CheckPermission(ctx context.Context, contractAddress, accessorAddress string) (bool, error) {
	result, err := g.contract.EvaluateWithContext(ctx, "CheckPermission",
		client.WithArguments(contractAddress, accessorAddress))
	if err != nil {
		return false, wrapErr("check permission", err)
	}

	allowed, err := strconv.ParseBool(strings.TrimSpace(string(result)))
	if err != nil {
		return false, wrapErr("check permission", fmt.Errorf("unexpected contract response %q", result))
	}
	return allowed, nil
}

// newGrpcConnection creates a gRPC connection to the gateway peer.
func newGrpcConnection(cfg config.LedgerConfig) (*grpc.ClientConn, error) {
	certificate, err := loadCertificate(cfg.TLSCertPath)
	if err != nil {
		return nil, err
	}

	certPool := x509.NewCertPool()
	certPool.AddCert(certificate)
	transportCredentials := credentials.NewClientTLSFromCert(certPool, cfg.GatewayPeer)

	connection, err := grpc.Dial(cfg.PeerEndpoint, grpc.WithTransportCredentials(transportCredentials))
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection: %w", err)
	}

	return connection, nil
}

// newIdentity creates the client identity for this gateway connection using
// an X.509 certificate.
func newIdentity(cfg config.LedgerConfig) (*identity.X509Identity, error) {
	certificate, err := loadCertificate(cfg.CertPath)
	if err != nil {
		return nil, err
	}

	return identity.NewX509Identity(cfg.MSPID, certificate)
}

func loadCertificate(filename string) (*x509.Certificate, error) {
	certificatePEM, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read certificate file: %w", err)
	}
	return identity.CertificateFromPEM(certificatePEM)
}

// newSign creates a function that generates a digital signature from a
// message digest using the first private key in the keystore directory.
func newSign(cfg config.LedgerConfig) (identity.Sign, error) {
	files, err := os.ReadDir(cfg.KeyDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key directory: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no private key found in %s", cfg.KeyDir)
	}

	privateKeyPEM, err := os.ReadFile(path.Join(cfg.KeyDir, files[0].Name()))
	if err != nil {
		return nil, fmt.Errorf("failed to read private key file: %w", err)
	}

	privateKey, err := identity.PrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		return nil, err
	}

	return identity.NewPrivateKeySign(privateKey)
}
