package hlf

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"reflect"
	"strconv"

	"github.com/hyperledger/fabric-sdk-go/pkg/client/ledger"
	"github.com/hyperledger/fabric-sdk-go/pkg/core/config"
	"github.com/hyperledger/fabric-sdk-go/pkg/fabsdk"
	"github.com/rs/zerolog/log"

	notifier "github.com/IRT-SystemX/bcm-notifier/notifier"
)

// HlfSource reads the height of a Fabric channel through the ledger client.
type HlfSource struct {
	path    string
	orgUser string
	sdk     *fabsdk.FabricSDK
	client  *ledger.Client
}

func NewHlfSource(path string, orgUser string) *HlfSource {
	return &HlfSource{path: path, orgUser: orgUser}
}

func loadProfile(pathFile string) (map[string]interface{}, error) {
	if _, err := os.Stat(pathFile); err != nil {
		return nil, errors.New("connection profile not found (" + pathFile + ")")
	}
	data, err := os.ReadFile(pathFile)
	if err != nil {
		return nil, err
	}
	raw := make(map[string]interface{})
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func getChannelName(raw map[string]interface{}) (string, error) {
	channels, ok := raw["channels"].(map[string]interface{})
	if !ok || len(channels) == 0 {
		return "", errors.New("channels not found in profile")
	}
	return reflect.ValueOf(channels).MapKeys()[0].String(), nil
}

func getOrgName(raw map[string]interface{}) (string, error) {
	client, ok := raw["client"].(map[string]interface{})
	if !ok {
		return "", errors.New("client not found in profile")
	}
	org, ok := client["organization"].(string)
	if !ok {
		return "", errors.New("organization not found in profile")
	}
	return org, nil
}

func (source *HlfSource) Connect() error {
	profile, err := loadProfile(source.path)
	if err != nil {
		return err
	}
	channelName, err := getChannelName(profile)
	if err != nil {
		return err
	}
	orgName, err := getOrgName(profile)
	if err != nil {
		return err
	}
	sdk, err := fabsdk.New(config.FromFile(source.path))
	if err != nil {
		return err
	}
	client, err := ledger.New(sdk.ChannelContext(channelName, fabsdk.WithUser(source.orgUser), fabsdk.WithOrg(orgName)))
	if err != nil {
		sdk.Close()
		return err
	}
	source.sdk = sdk
	source.client = client
	log.Info().Str("channel", channelName).Str("org", orgName).Msg("Ledger client ready")
	return nil
}

// Fetch returns the number of the last block of the channel. The ledger
// client has no context support, so ctx is only checked before the query.
func (source *HlfSource) Fetch(ctx context.Context) (notifier.Value, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	info, err := source.client.QueryInfo()
	if err != nil {
		return "", err
	}
	if info.BCI.Height == 0 {
		return "", errors.New("empty ledger")
	}
	return notifier.Value(strconv.FormatUint(info.BCI.Height-1, 10)), nil
}

func (source *HlfSource) Close() {
	if source.sdk != nil {
		source.sdk.Close()
	}
}
