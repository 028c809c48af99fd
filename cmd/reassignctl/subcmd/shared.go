package subcmd

import (
	"context"
	"errors"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/reassignctl/reassignctl/pkg/admin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type sharedOptions struct {
	brokerAddr    string
	saslMechanism string
	saslPassword  string
	saslUsername  string
	tlsCACert     string
	tlsCert       string
	tlsEnabled    bool
	tlsKey        string
	tlsSkipVerify bool
	tlsServerName string
}

func (s sharedOptions) validate() error {
	var err error

	if s.brokerAddr == "" {
		err = multierror.Append(
			err,
			errors.New("Must set broker-addr"),
		)
	}

	useSASL := s.saslMechanism != "" || s.saslPassword != "" || s.saslUsername != ""

	if useSASL {
		saslMechanism, saslErr := admin.SASLNameToMechanism(s.saslMechanism)
		if saslErr != nil {
			err = multierror.Append(err, saslErr)
		}

		if saslMechanism == admin.SASLMechanismAWSMSKIAM &&
			(s.saslUsername != "" || s.saslPassword != "") {
			log.Warn("Username and password are ignored if using SASL AWS-MSK-IAM")
		}
	}

	return err
}

func (s sharedOptions) getAdminClient(
	ctx context.Context,
	readOnly bool,
) (admin.Client, error) {
	tlsEnabled := (s.tlsEnabled ||
		s.tlsCACert != "" ||
		s.tlsCert != "" ||
		s.tlsKey != "")
	saslEnabled := (s.saslMechanism != "" ||
		s.saslPassword != "" ||
		s.saslUsername != "")

	var saslMechanism admin.SASLMechanism
	var err error

	if s.saslMechanism != "" {
		saslMechanism, err = admin.SASLNameToMechanism(s.saslMechanism)
		if err != nil {
			return nil, err
		}
	}

	return admin.NewBrokerAdminClient(
		ctx,
		admin.BrokerAdminClientConfig{
			ConnectorConfig: admin.ConnectorConfig{
				BrokerAddr: s.brokerAddr,
				TLS: admin.TLSConfig{
					Enabled:    tlsEnabled,
					CACertPath: s.tlsCACert,
					CertPath:   s.tlsCert,
					KeyPath:    s.tlsKey,
					ServerName: s.tlsServerName,
					SkipVerify: s.tlsSkipVerify,
				},
				SASL: admin.SASLConfig{
					Enabled:   saslEnabled,
					Mechanism: saslMechanism,
					Password:  s.saslPassword,
					Username:  s.saslUsername,
				},
			},
			ReadOnly: readOnly,
		},
	)
}

func addSharedFlags(cmd *cobra.Command, options *sharedOptions) {
	cmd.PersistentFlags().StringVarP(
		&options.brokerAddr,
		"broker-addr",
		"b",
		os.Getenv("REASSIGNCTL_BROKER_ADDR"),
		"Broker address",
	)
	cmd.PersistentFlags().StringVar(
		&options.saslMechanism,
		"sasl-mechanism",
		"",
		"SASL mechanism if using SASL (choices: AWS-MSK-IAM, PLAIN, SCRAM-SHA-256, or SCRAM-SHA-512)",
	)
	cmd.PersistentFlags().StringVar(
		&options.saslPassword,
		"sasl-password",
		os.Getenv("REASSIGNCTL_SASL_PASSWORD"),
		"SASL password if using SASL",
	)
	cmd.PersistentFlags().StringVar(
		&options.saslUsername,
		"sasl-username",
		os.Getenv("REASSIGNCTL_SASL_USERNAME"),
		"SASL username if using SASL",
	)
	cmd.PersistentFlags().StringVar(
		&options.tlsCACert,
		"tls-ca-cert",
		"",
		"Path to client CA cert PEM file if using TLS",
	)
	cmd.PersistentFlags().StringVar(
		&options.tlsCert,
		"tls-cert",
		"",
		"Path to client cert PEM file if using TLS",
	)
	cmd.PersistentFlags().BoolVar(
		&options.tlsEnabled,
		"tls-enabled",
		false,
		"Use TLS for communication with brokers",
	)
	cmd.PersistentFlags().StringVar(
		&options.tlsKey,
		"tls-key",
		"",
		"Path to client private key PEM file if using TLS",
	)
	cmd.PersistentFlags().StringVar(
		&options.tlsServerName,
		"tls-server-name",
		"",
		"Server name to use for TLS cert verification",
	)
	cmd.PersistentFlags().BoolVar(
		&options.tlsSkipVerify,
		"tls-skip-verify",
		false,
		"Skip hostname verification when using TLS",
	)
}
