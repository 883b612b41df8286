package sign

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/ChainSafe/utopia-relay/cli/utils"
	"github.com/ChainSafe/utopia-relay/relayer/merkle"
	"github.com/ChainSafe/utopia-relay/relayer/signature"
)

var (
	packCMD = &cobra.Command{
		Use:   "pack",
		Short: "Pack signatures into a blob",
		Long: "Pack signatures into a blob accepted by the bridge. Without --interleaved signatures are " +
			"concatenated in --validators order. With --interleaved every validator of the set is listed in " +
			"ascending order and validators without a signature are written as placeholders.",
		RunE: pack,
	}
)

var (
	validators  []string
	signatures  map[string]string
	interleaved bool
)

func init() {
	packCMD.Flags().StringSliceVar(&validators, "validators", nil, "comma separated validator addresses")
	packCMD.Flags().StringToStringVar(&signatures, "signatures", nil, "address=signature pairs")
	packCMD.Flags().BoolVar(&interleaved, "interleaved", false, "produce the interleaved merkle form")
	_ = packCMD.MarkFlagRequired("validators")
	_ = packCMD.MarkFlagRequired("signatures")
}

func pack(cmd *cobra.Command, args []string) error {
	addrs, err := utils.ParseAddresses(validators)
	if err != nil {
		return err
	}
	sigs := make(map[common.Address][]byte, len(signatures))
	for a, s := range signatures {
		addr, err := utils.ParseAddress(a)
		if err != nil {
			return err
		}
		sig, err := hexutil.Decode(s)
		if err != nil {
			return fmt.Errorf("signature of %s: %w", addr, err)
		}
		if len(sig) != signature.SignatureLength {
			return fmt.Errorf("signature of %s has length %d", addr, len(sig))
		}
		sigs[addr] = sig
	}

	var blob []byte
	if interleaved {
		blob = signature.PackInterleaved(merkle.SortAddresses(addrs), sigs)
	} else {
		ordered := make([][]byte, 0, len(sigs))
		for _, addr := range addrs {
			if sig, ok := sigs[addr]; ok {
				ordered = append(ordered, sig)
			}
		}
		blob = signature.Pack(ordered...)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Signatures: %s\n", hexutil.Encode(blob))
	return nil
}
