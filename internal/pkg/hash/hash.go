//
// Copyright (c) 2020-2023, NVIDIA CORPORATION. All rights reserved.
//
// See LICENSE.txt for license information
//

package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"sort"
)

// File returns the SHA-256 checksum of a file
func File(path string) (string, error) {
	fileFd, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer fileFd.Close()
	hasher := sha256.New()
	_, err = io.Copy(hasher, fileFd)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// Files returns the checksum of the timing files of a dataset, indexed by number of ranks
func Files(paths map[int]string) (map[int]string, error) {
	var keys []int
	for k := range paths {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	checksums := make(map[int]string)
	for _, k := range keys {
		sum, err := File(paths[k])
		if err != nil {
			return nil, err
		}
		checksums[k] = sum
	}
	return checksums, nil
}
